// Package providers models the supported identity providers as a closed
// set of variants. Each variant carries its endpoints, scopes and profile
// mapping; the relay and the profile client dispatch through one generic
// code path parameterized by the variant.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-login-relay/identity"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// Supported provider identifiers.
const (
	Google   = "google"
	Facebook = "facebook"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Credentials are the client id/secret pair registered with a provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Provider describes one identity provider variant.
type Provider struct {
	ID          string
	DisplayName string
	Endpoint    oauth2.Endpoint
	Scopes      []string

	// Issuer enables OIDC discovery for the authorization and token
	// endpoints. Empty for plain OAuth2 providers.
	Issuer string

	// UserInfoURL is the provider's profile endpoint, for providers that
	// do not return an identity token.
	UserInfoURL string

	UsesPKCE bool

	mapProfile func(body []byte) (identity.UserProfile, error)
}

// Registry is the closed set of supported providers. Lookups of unknown
// ids fail, so unconfigured providers have no routes.
type Registry struct {
	providers map[string]*Provider

	discoveredLock sync.RWMutex
	discovered     map[string]oauth2.Endpoint
}

// NewRegistry returns a registry holding the two supported variants.
func NewRegistry() *Registry {
	r := &Registry{
		providers:  make(map[string]*Provider),
		discovered: make(map[string]oauth2.Endpoint),
	}

	r.providers[Google] = &Provider{
		ID:          Google,
		DisplayName: "Google",
		Endpoint:    google.Endpoint,
		Scopes:      []string{oidc.ScopeOpenID, "profile", "email"},
		Issuer:      "https://accounts.google.com",
		UsesPKCE:    true,
	}

	r.providers[Facebook] = &Provider{
		ID:          Facebook,
		DisplayName: "Facebook",
		Endpoint:    facebook.Endpoint,
		Scopes:      []string{"email", "public_profile"},
		UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email,first_name,last_name,picture",
		mapProfile:  mapFacebookProfile,
	}

	return r
}

// Get returns the provider variant for the given id.
func (r *Registry) Get(id string) (*Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return p, nil
}

// IDs returns the supported provider identifiers.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

// OAuthConfig builds the oauth2 configuration for a provider from the
// configured credentials and callback URL.
func (r *Registry) OAuthConfig(ctx context.Context, p *Provider, creds Credentials, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     r.endpoint(ctx, p),
		RedirectURL:  redirectURL,
		Scopes:       p.Scopes,
	}
}

// endpoint returns the provider's endpoints, upgraded through OIDC
// discovery when the variant declares an issuer. Discovery results are
// cached; on failure the static endpoints are used.
func (r *Registry) endpoint(ctx context.Context, p *Provider) oauth2.Endpoint {
	if p.Issuer == "" {
		return p.Endpoint
	}

	r.discoveredLock.RLock()
	endpoint, exists := r.discovered[p.ID]
	r.discoveredLock.RUnlock()
	if exists {
		return endpoint
	}

	oidcProvider, err := oidc.NewProvider(ctx, p.Issuer)
	if err != nil {
		log.Warn().Err(err).Str("provider", p.ID).Msg("OIDC discovery failed, using static endpoints")
		return p.Endpoint
	}

	endpoint = oidcProvider.Endpoint()
	r.discoveredLock.Lock()
	r.discovered[p.ID] = endpoint
	r.discoveredLock.Unlock()

	return endpoint
}

// ProfileFromIDToken derives a profile from the unverified claims of the
// provider's identity token. Display-only, the claims are not trusted for
// anything beyond rendering.
func (p *Provider) ProfileFromIDToken(idToken string) (identity.UserProfile, error) {
	claims, err := identity.DecodeIdentityToken(idToken)
	if err != nil {
		return identity.UserProfile{}, err
	}

	profile := identity.UserProfile{
		ID:         stringClaim(claims, "sub"),
		Provider:   p.ID,
		Name:       stringClaim(claims, "name"),
		Email:      stringClaim(claims, "email"),
		Picture:    stringClaim(claims, "picture"),
		GivenName:  stringClaim(claims, "given_name"),
		FamilyName: stringClaim(claims, "family_name"),
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		profile.EmailVerified = verified
	}
	return profile, nil
}

// FetchProfile queries the provider's profile endpoint with the access
// token and maps the response into a profile.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (identity.UserProfile, error) {
	if p.UserInfoURL == "" || p.mapProfile == nil {
		return identity.UserProfile{}, fmt.Errorf("provider %q has no profile endpoint", p.ID)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return identity.UserProfile{}, fmt.Errorf("build profile request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return identity.UserProfile{}, fmt.Errorf("fetch %s profile: %w", p.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return identity.UserProfile{}, fmt.Errorf("fetch %s profile: unexpected status %d", p.ID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identity.UserProfile{}, fmt.Errorf("read %s profile response: %w", p.ID, err)
	}

	return p.mapProfile(body)
}

func stringClaim(claims jwtlib.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// mapFacebookProfile converts a Graph API /me response into a profile.
// The provider-assigned id becomes the profile id.
func mapFacebookProfile(body []byte) (identity.UserProfile, error) {
	var graph struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Picture   struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(body, &graph); err != nil {
		return identity.UserProfile{}, fmt.Errorf("parse facebook profile: %w", err)
	}

	return identity.UserProfile{
		ID:         graph.ID,
		Provider:   Facebook,
		Name:       graph.Name,
		Email:      graph.Email,
		GivenName:  graph.FirstName,
		FamilyName: graph.LastName,
		Picture:    graph.Picture.Data.URL,
	}, nil
}
