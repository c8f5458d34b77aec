// Package revocation tracks subjects whose outstanding tokens must be
// rejected before their natural expiry. An entry is written on logout
// and cleared on the subject's next successful login.
package revocation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry is consulted on every authenticated request and mutated on
// every login/logout, so implementations must be safe for concurrent
// use. Insert and remove are idempotent.
type Registry interface {
	Revoke(ctx context.Context, userID uuid.UUID) error
	Unrevoke(ctx context.Context, userID uuid.UUID) error
	IsRevoked(ctx context.Context, userID uuid.UUID) (bool, error)
}

// MemoryRegistry keeps revocations in process memory. Entries are lost
// on restart: previously logged-out subjects regain their unexpired
// tokens until those expire naturally. Deployments spanning several
// processes, or restarting faster than the access-token lifetime,
// should wire the redis-backed registry instead.
type MemoryRegistry struct {
	mu      sync.RWMutex
	revoked map[uuid.UUID]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{revoked: make(map[uuid.UUID]struct{})}
}

func (m *MemoryRegistry) Revoke(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[userID] = struct{}{}
	return nil
}

func (m *MemoryRegistry) Unrevoke(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.revoked, userID)
	return nil
}

func (m *MemoryRegistry) IsRevoked(_ context.Context, userID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.revoked[userID]
	return ok, nil
}
