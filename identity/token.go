package identity

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DecodeIdentityToken extracts the claims from a compact JWT without
// verifying its signature or expiry. The result is display-only and must
// never be used for authorization decisions.
func DecodeIdentityToken(token string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode identity token: %w", err)
	}
	return claims, nil
}
