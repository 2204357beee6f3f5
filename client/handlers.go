package client

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-login-relay/identity"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// loginPageData contains data for rendering the login page
type loginPageData struct {
	AppName   string
	Error     string
	Providers []loginButton
}

type loginButton struct {
	ID          string
	DisplayName string
	ConnectURL  string
}

// profilePageData contains data for rendering the profile card
type profilePageData struct {
	AppName       string
	Profile       identity.UserProfile
	ProviderBadge string
	LogoutURL     string
}

// IndexHandler recovers the login result from the redirect URL, if any,
// and renders either the profile card or the login buttons. Malformed
// redirect payloads are logged and ignored: the page falls back to the
// logged-out view, it never crashes.
func (s *Server) IndexHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}
	profileTmpl, err := ParseTemplate("profile.html")
	if err != nil {
		panic("Failed to parse profile template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		renderLogin := func(errorMessage string) {
			data := loginPageData{
				AppName: s.config.GetAppName(),
				Error:   errorMessage,
			}
			for _, id := range []string{"google", "facebook"} {
				provider, err := s.providers.Get(id)
				if err != nil {
					continue
				}
				data.Providers = append(data.Providers, loginButton{
					ID:          provider.ID,
					DisplayName: provider.DisplayName,
					ConnectURL:  s.connectURL(provider.ID),
				})
			}
			w.Header().Set("Content-Type", contentTypeHTML)
			_ = loginTmpl.Execute(w, data)
		}

		if q.Get("error") != "" {
			renderLogin("Login failed. Please try again.")
			return
		}

		encoded := q.Get("user")
		if encoded == "" {
			renderLogin("")
			return
		}

		var result identity.AuthResult
		if err := json.Unmarshal([]byte(encoded), &result); err != nil {
			log.Warn().Err(err).Msg("ignoring malformed user parameter")
			renderLogin("")
			return
		}

		profile, err := s.profileFor(r.Context(), result)
		if err != nil {
			log.Warn().Err(err).Str("provider", result.Provider).Msg("could not derive profile")
			renderLogin("")
			return
		}

		badge := profile.Provider
		if provider, err := s.providers.Get(profile.Provider); err == nil {
			badge = provider.DisplayName
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		_ = profileTmpl.Execute(w, profilePageData{
			AppName:       s.config.GetAppName(),
			Profile:       profile,
			ProviderBadge: badge,
			LogoutURL:     "/logout",
		})
	}
}

// LogoutHandler clears the page state by navigating through the relay's
// logout endpoint, which destroys the session and redirects back here.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.logoutURL(), http.StatusSeeOther)
	}
}
