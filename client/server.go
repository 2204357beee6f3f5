// Package client implements the profile client: a small server-rendered
// web application at the client origin that triggers login against the
// relay, recovers the encoded AuthResult from the redirect URL, derives
// the profile to display and presents login/logout affordances.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-login-relay/identity"
	"github.com/jrsteele09/go-login-relay/internal/config"
	"github.com/jrsteele09/go-login-relay/providers"
)

type Server struct {
	mux       *http.ServeMux
	config    config.ClientConfig
	providers *providers.Registry
}

func New(cfg config.ClientConfig, registry *providers.Registry) (*Server, error) {
	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		providers: registry,
	}

	s.mux.HandleFunc("GET /{$}", s.IndexHandler())
	s.mux.HandleFunc("GET /logout", s.LogoutHandler())

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// connectURL returns the relay endpoint that starts the provider's
// authorization flow. Login is a full page navigation, not a background
// request.
func (s *Server) connectURL(providerID string) string {
	return s.config.GetRelayOrigin() + "/connect/" + providerID
}

// logoutURL routes the client's logout through the relay, which destroys
// the session and sends the browser back here.
func (s *Server) logoutURL() string {
	return s.config.GetRelayOrigin() + "/logout?return_to=" + url.QueryEscape(s.config.GetBaseURL())
}

// profileFor derives the display profile from a recovered AuthResult.
// Providers that embed an identity token are decoded locally (unverified,
// display-only); the rest are queried at their profile endpoint with the
// access token.
func (s *Server) profileFor(ctx context.Context, result identity.AuthResult) (identity.UserProfile, error) {
	provider, err := s.providers.Get(result.Provider)
	if err != nil {
		return identity.UserProfile{}, err
	}

	if result.IDToken != "" {
		return provider.ProfileFromIDToken(result.IDToken)
	}
	if provider.UserInfoURL != "" {
		return provider.FetchProfile(ctx, result.AccessToken)
	}
	return identity.UserProfile{}, fmt.Errorf("no profile source for provider %q", result.Provider)
}
