package relay

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-login-relay/relay/authflowrepo"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// ConnectHandler begins the authorization flow for a provider. Unknown
// providers fail closed with 404: no such route exists.
func (s *Server) ConnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := s.providers.Get(r.PathValue("provider"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		cfg, err := s.oauthConfig(r.Context(), provider)
		if err != nil {
			http.Error(w, "provider not configured", http.StatusInternalServerError)
			return
		}

		state := generateRandomString(32)
		flow := &authflowrepo.AuthFlowState{Provider: provider.ID}

		// An allow-listed return_to is carried through the flow so the
		// callback can send the browser back to where login started.
		if returnTo := r.FormValue("return_to"); returnTo != "" {
			if s.config.GetAllowedOrigins().IsAllowedOrigin(returnTo) {
				flow.ReturnURL = strings.TrimRight(returnTo, "/")
			} else {
				log.Warn().Str("return_to", returnTo).Str("provider", provider.ID).Msg("connect return_to not on the allow-list")
			}
		}

		var opts []oauth2.AuthCodeOption
		if provider.UsesPKCE {
			verifier := generateRandomString(32)
			flow.CodeVerifier = verifier
			opts = append(opts,
				oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(verifier)),
				oauth2.SetAuthURLParam("code_challenge_method", "S256"),
			)
		}

		if err := s.authState.Upsert(state, flow); err != nil {
			log.Err(err).Str("provider", provider.ID).Msg("failed to record pending auth flow")
			http.Error(w, "failed to start authorization", http.StatusInternalServerError)
			return
		}

		s.metrics.RecordAuthStarted(provider.ID)
		http.Redirect(w, r, cfg.AuthCodeURL(state, opts...), http.StatusFound)
	}
}
