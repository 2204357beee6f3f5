// Package authflowrepo stores pending authorization flows keyed by the
// OAuth2 state parameter. Entries are time-bounded: a provider that never
// calls back cannot grow the arena without bound.
package authflowrepo

import (
	"errors"
	"time"
)

var (
	ErrStateNotFound = errors.New("state not found")
	ErrStateExpired  = errors.New("state expired")
)

type AuthFlowState struct {
	Provider     string
	CodeVerifier string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	// Consume atomically removes a state and returns its flow, so two
	// callbacks presenting the same state cannot both succeed.
	Consume(state string) (*AuthFlowState, error)
	Delete(state string) error
	DeleteExpired() int
}
