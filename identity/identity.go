// Package identity holds the data model shared between the session relay
// and the profile client: the provider token response captured by the
// relay (AuthResult) and the normalized profile derived from it
// (UserProfile).
package identity

import "time"

// AuthResult is the provider's token response once captured by the relay.
// It is produced once per successful callback, owned by the login session
// and replaced wholesale on re-login.
type AuthResult struct {
	Provider    string         `json:"provider"`
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type,omitempty"`
	IDToken     string         `json:"id_token,omitempty"`
	ExpiresAt   time.Time      `json:"expires_at,omitzero"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// UserProfile is derived on the client side only, from the unverified ID
// token claims or the provider's profile endpoint. It is never persisted.
type UserProfile struct {
	ID            string `json:"id,omitempty"`
	Provider      string `json:"provider"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Picture       string `json:"picture,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}
