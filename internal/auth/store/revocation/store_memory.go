package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL is a single-process list for development and tests.
type InMemoryTRL struct {
	mu      sync.Mutex
	expires map[string]time.Time
	clock   Clock
}

func NewInMemoryTRL(opts ...Option) *InMemoryTRL {
	return &InMemoryTRL{
		expires: make(map[string]time.Time),
		clock:   buildOptions(opts).clock,
	}
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	until := t.clock().Add(ttl)

	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.expires[jti]; !ok || until.After(current) {
		t.expires[jti] = until
	}
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	defer observeCheck("memory", time.Now())

	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.expires[jti]
	if !ok {
		return false, nil
	}
	if !t.clock().Before(until) {
		delete(t.expires, jti)
		return false, nil
	}
	return true, nil
}
