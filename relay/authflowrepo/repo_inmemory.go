package authflowrepo

import (
	"errors"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface with TTL expiry.
type InMemoryRepo struct {
	mu     sync.RWMutex
	states map[string]*AuthFlowState
	ttl    time.Duration
}

// NewInMemoryRepo creates a new in-memory auth flow state repository.
// Entries older than ttl are invisible to Get and removed by
// DeleteExpired.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*AuthFlowState),
		ttl:    ttl,
	}
}

// Upsert stores or updates an auth flow state.
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modifications
	stored := *authState
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = NowTimeFunc()
	}
	r.states[state] = &stored

	return nil
}

// Get retrieves an auth flow state by state parameter. Expired entries
// are treated as absent.
func (r *InMemoryRepo) Get(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	if r.expired(authState) {
		return nil, ErrStateExpired
	}

	// Return a copy to prevent external modifications
	found := *authState
	return &found, nil
}

// Consume removes an auth flow state and returns it in one step. A state
// is good for exactly one consume; expired entries are removed but
// reported as expired.
func (r *InMemoryRepo) Consume(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	delete(r.states, state)

	if r.expired(authState) {
		return nil, ErrStateExpired
	}

	found := *authState
	return &found, nil
}

// Delete removes an auth flow state. Deleting an absent state is not an
// error.
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}

// DeleteExpired purges all expired entries and returns how many were
// removed.
func (r *InMemoryRepo) DeleteExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for state, authState := range r.states {
		if r.expired(authState) {
			delete(r.states, state)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries. Used by tests.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

func (r *InMemoryRepo) expired(authState *AuthFlowState) bool {
	return r.ttl > 0 && NowTimeFunc().Sub(authState.CreatedAt) > r.ttl
}
