// Package metrics collects and exposes Prometheus metrics for the
// session relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the interface the relay handlers record through, so tests
// can substitute a fake.
type Collector interface {
	RecordAuthStarted(provider string)
	RecordAuthCompleted(provider string)
	RecordAuthFailed(provider, reason string)
	RecordExchangeLatency(duration time.Duration)
}

// PrometheusCollector implements Collector on a Prometheus registry.
type PrometheusCollector struct {
	authStarted     *prometheus.CounterVec
	authCompleted   *prometheus.CounterVec
	authFailed      *prometheus.CounterVec
	exchangeLatency prometheus.Histogram
}

var _ Collector = (*PrometheusCollector)(nil)

// NewCollector creates a collector and registers its metrics with the
// given registry.
func NewCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		authStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_auth_started_total",
			Help: "Authorization flows started, per provider",
		}, []string{"provider"}),
		authCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_auth_completed_total",
			Help: "Authorization flows completed, per provider",
		}, []string{"provider"}),
		authFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_auth_failed_total",
			Help: "Authorization flows failed, per provider and reason",
		}, []string{"provider", "reason"}),
		exchangeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_exchange_latency_seconds",
			Help:    "Latency of the provider token exchange",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authStarted,
		c.authCompleted,
		c.authFailed,
		c.exchangeLatency,
	)

	return c
}

func (c *PrometheusCollector) RecordAuthStarted(provider string) {
	c.authStarted.WithLabelValues(provider).Inc()
}

func (c *PrometheusCollector) RecordAuthCompleted(provider string) {
	c.authCompleted.WithLabelValues(provider).Inc()
}

func (c *PrometheusCollector) RecordAuthFailed(provider, reason string) {
	c.authFailed.WithLabelValues(provider, reason).Inc()
}

func (c *PrometheusCollector) RecordExchangeLatency(duration time.Duration) {
	c.exchangeLatency.Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Collector that records nothing. The relay substitutes it when
// constructed without a collector.
type Nop struct{}

var _ Collector = Nop{}

func (Nop) RecordAuthStarted(string) {}

func (Nop) RecordAuthCompleted(string) {}

func (Nop) RecordAuthFailed(string, string) {}

func (Nop) RecordExchangeLatency(time.Duration) {}
