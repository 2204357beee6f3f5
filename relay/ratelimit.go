package relay

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// clientLimiter holds a per-client rate limiter and its last access time.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ConnectRateLimiter throttles authorization-flow starts per client IP so
// a single browser cannot fill the pending-flow arena.
type ConnectRateLimiter struct {
	ratePerSec rate.Limit
	burst      int

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

// NewConnectRateLimiter creates a limiter allowing ratePerMinute flow
// starts per client IP with the given burst.
func NewConnectRateLimiter(ratePerMinute float64, burst int) *ConnectRateLimiter {
	return &ConnectRateLimiter{
		ratePerSec: rate.Limit(ratePerMinute / 60.0),
		burst:      burst,
		limiters:   make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// hint.
func (rl *ConnectRateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := clientAddr(r)

		if !rl.limiterFor(clientIP).Allow() {
			retryAfterSec := int(math.Ceil(1.0 / float64(rl.ratePerSec)))
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
			log.Warn().Str("client", clientIP).Msg("rate limit exceeded on connect")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		next(w, r)
	}
}

// Cleanup removes limiters idle longer than ttl.
func (rl *ConnectRateLimiter) Cleanup(ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for clientIP, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, clientIP)
		}
	}
}

func (rl *ConnectRateLimiter) limiterFor(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, exists := rl.limiters[clientIP]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	cl := &clientLimiter{
		limiter:    rate.NewLimiter(rl.ratePerSec, rl.burst),
		lastAccess: time.Now(),
	}
	rl.limiters[clientIP] = cl
	return cl.limiter
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
