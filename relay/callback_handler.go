package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-login-relay/identity"
	"github.com/jrsteele09/go-login-relay/relay/loginsession"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// rawTokenKeys are the provider response fields copied into the opaque
// AuthResult.Raw mapping when present.
var rawTokenKeys = []string{"id_token", "scope", "expires_in", "refresh_token"}

// CallbackHandler is invoked by the provider's redirect. It verifies the
// state against the pending-flow arena, exchanges the authorization code
// for tokens and stores the result in a fresh session. Every failure is
// converted to an error-marker redirect; the browser never sees a fault.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := s.providers.Get(r.PathValue("provider"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		fail := func(reason string, err error) {
			log.Warn().Err(err).Str("provider", provider.ID).Str("reason", reason).Msg("authorization callback failed")
			s.metrics.RecordAuthFailed(provider.ID, reason)
			http.Redirect(w, r, s.config.GetClientOrigin()+"/?error=auth_failed", http.StatusSeeOther)
		}

		state := r.FormValue("state")
		code := r.FormValue("code")

		if errorParam := r.FormValue("error"); errorParam != "" {
			fail("provider_denied", errors.New(errorParam))
			return
		}
		if code == "" || state == "" {
			fail("missing_code_or_state", nil)
			return
		}

		// A state is good for one exchange only: consuming it removes it,
		// so a replayed callback cannot pass verification twice.
		flow, err := s.authState.Consume(state)
		if err != nil {
			fail("invalid_state", err)
			return
		}

		if flow.Provider != provider.ID {
			fail("provider_mismatch", nil)
			return
		}

		cfg, err := s.oauthConfig(r.Context(), provider)
		if err != nil {
			fail("provider_not_configured", err)
			return
		}

		var opts []oauth2.AuthCodeOption
		if flow.CodeVerifier != "" {
			opts = append(opts, oauth2.SetAuthURLParam("code_verifier", flow.CodeVerifier))
		}

		exchangeStart := time.Now()
		oauth2Token, err := cfg.Exchange(r.Context(), code, opts...)
		s.metrics.RecordExchangeLatency(time.Since(exchangeStart))
		if err != nil {
			fail("exchange_failed", err)
			return
		}

		result := identity.AuthResult{
			Provider:    provider.ID,
			AccessToken: oauth2Token.AccessToken,
			TokenType:   oauth2Token.TokenType,
			ExpiresAt:   oauth2Token.Expiry,
			Raw:         rawResponseFields(oauth2Token),
		}
		if idToken, ok := oauth2Token.Extra("id_token").(string); ok {
			result.IDToken = idToken
		}

		sessionID := uuid.NewString()
		now := time.Now()
		session := loginsession.Session{
			AuthResult: result,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.config.GetSessionTTL()),
		}
		if err := s.sessions.Upsert(sessionID, session); err != nil {
			fail("session_store_failed", err)
			return
		}

		s.SetLoginSessionCookie(w, r, sessionID, int(s.config.GetSessionTTL().Seconds()))
		s.metrics.RecordAuthCompleted(provider.ID)

		encoded, err := json.Marshal(result)
		if err != nil {
			fail("encode_failed", err)
			return
		}

		// The flow may carry an allow-listed return origin recorded when it
		// was started; otherwise the browser goes back to the client origin.
		returnOrigin := s.config.GetClientOrigin()
		if flow.ReturnURL != "" {
			returnOrigin = flow.ReturnURL
		}
		http.Redirect(w, r, returnOrigin+"/?user="+url.QueryEscape(string(encoded)), http.StatusSeeOther)
	}
}

// rawResponseFields copies the well-known extra fields of the provider's
// token response into an opaque mapping.
func rawResponseFields(token *oauth2.Token) map[string]any {
	raw := make(map[string]any)
	for _, key := range rawTokenKeys {
		if value := token.Extra(key); value != nil {
			raw[key] = value
		}
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}
