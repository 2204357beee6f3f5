// Package relay implements the session relay: it bridges the browser and
// the identity providers through the OAuth2 authorization-code exchange
// and keeps the resulting credential in a server-side session.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-login-relay/internal/config"
	"github.com/jrsteele09/go-login-relay/internal/metrics"
	"github.com/jrsteele09/go-login-relay/providers"
	"github.com/jrsteele09/go-login-relay/relay/authflowrepo"
	"github.com/jrsteele09/go-login-relay/relay/loginsession"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	providers *providers.Registry
	sessions  loginsession.Repo
	authState authflowrepo.Repo
	metrics   metrics.Collector
	limiter   *ConnectRateLimiter
}

func New(cfg config.Config, registry *providers.Registry, sessionRepo loginsession.Repo, authStateRepo authflowrepo.Repo, collector metrics.Collector, gatherer prometheus.Gatherer) (*Server, error) {
	// Fail closed: every registered provider must have credentials before
	// the server starts serving.
	for _, id := range registry.IDs() {
		if _, _, err := cfg.GetProviderCredentials(id); err != nil {
			return nil, fmt.Errorf("[relay New] %w", err)
		}
	}

	if collector == nil {
		collector = metrics.Nop{}
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		providers: registry,
		sessions:  sessionRepo,
		authState: authStateRepo,
		metrics:   collector,
		limiter:   NewConnectRateLimiter(cfg.GetConnectRatePerMinute(), cfg.GetConnectBurst()),
	}
	s.env = cfg.GetEnv()

	s.initRoutes(gatherer)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes(gatherer prometheus.Gatherer) {
	s.RegisterRouteHandler("GET "+RouteConnect, ChainMiddleware(s.ConnectHandler(), append(s.APIMiddleware(), s.limiter.Middleware)...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUser, ChainMiddleware(s.UserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if gatherer != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(gatherer))
	}
}

// StartCleanup runs the pending-flow, session and rate-limiter janitor
// until the context is cancelled.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.authState.DeleteExpired(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("purged expired pending auth flows")
			}
			if removed := s.sessions.DeleteExpired(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("purged expired sessions")
			}
			// A client that has not started a flow within the pending-auth
			// window no longer needs its limiter.
			s.limiter.Cleanup(s.config.GetPendingAuthTTL())
		case <-ctx.Done():
			return
		}
	}
}

// oauthConfig builds the oauth2 configuration for a provider variant from
// the configured credentials and the relay's callback URL.
func (s *Server) oauthConfig(ctx context.Context, p *providers.Provider) (*oauth2.Config, error) {
	clientID, clientSecret, err := s.config.GetProviderCredentials(p.ID)
	if err != nil {
		return nil, err
	}
	creds := providers.Credentials{ClientID: clientID, ClientSecret: clientSecret}
	redirectURL := s.config.GetBaseURL() + "/auth/" + p.ID + "/callback"
	return s.providers.OAuthConfig(ctx, p, creds, redirectURL), nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
