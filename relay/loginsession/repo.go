// Package loginsession stores the relay's per-browser sessions, keyed by
// the opaque identifier carried in the session cookie. A session holds at
// most one AuthResult at a time; re-login replaces it wholesale.
package loginsession

import (
	"errors"
	"time"

	"github.com/jrsteele09/go-login-relay/identity"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

type Session struct {
	AuthResult identity.AuthResult
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
	DeleteExpired() int
}
