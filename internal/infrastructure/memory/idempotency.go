package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type idemEntry struct {
	resp      *ports.StoredResponse
	expiresAt time.Time
}

// IdempotencyStore claves de idempotencia en proceso (sin Redis configurado).
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idemEntry
	now     func() time.Time
}

// NewIdempotencyStore crea el almacén vacío.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: map[string]idemEntry{}, now: time.Now}
}

func (s *IdempotencyStore) Begin(_ context.Context, key string, pendingTTL time.Duration) (*ports.StoredResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.resp, false, nil
	}
	s.entries[key] = idemEntry{expiresAt: now.Add(pendingTTL)}
	return nil, true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key string, resp ports.StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = idemEntry{resp: &resp, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
