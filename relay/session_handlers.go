package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-login-relay/identity"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// UserHandler returns the current session's AuthResult, or null if none.
// Read-only, no side effects.
func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user *identity.AuthResult

		if sessionID := sessionIDFromRequest(r); sessionID != "" {
			if session, err := s.sessions.Get(sessionID); err == nil {
				user = &session.AuthResult
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

// LogoutHandler destroys the session. Idempotent, logging out twice is
// not an error. With an allow-listed return_to parameter the browser is
// sent back there instead of receiving JSON, so the profile client can
// route its logout through the relay with a plain navigation.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID := sessionIDFromRequest(r); sessionID != "" {
			if err := s.sessions.Delete(sessionID); err != nil {
				log.Err(err).Msg("failed to delete session")
			}
		}
		s.ClearLoginSessionCookie(w, r)

		if returnTo := r.URL.Query().Get("return_to"); returnTo != "" {
			if s.config.GetAllowedOrigins().IsAllowedOrigin(returnTo) {
				http.Redirect(w, r, returnTo, http.StatusSeeOther)
				return
			}
			log.Warn().Str("return_to", returnTo).Msg("logout return_to not on the allow-list")
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

// HealthHandler is the liveness probe.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
