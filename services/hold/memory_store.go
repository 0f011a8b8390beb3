package hold

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sessionID string
	expiresAt time.Time
}

// MemoryStore is a single-process stand-in for the Redis store with the
// same atomicity and expiry semantics. Expired entries are reaped lazily
// on access.
type MemoryStore struct {
	mu    sync.Mutex
	holds map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{holds: make(map[string]memoryEntry), now: time.Now}
}

// SetNow overrides the store's clock. Tests use this to fast-forward
// past hold expiry.
func (s *MemoryStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := s.holds[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.holds, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Acquire(_ context.Context, key, sessionID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.live(key); ok && e.sessionID != sessionID {
		return false, nil
	}
	s.holds[key] = memoryEntry{sessionID: sessionID, expiresAt: s.now().Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.live(key); ok && e.sessionID == sessionID {
		delete(s.holds, key)
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) Renew(_ context.Context, key, sessionID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.live(key); ok && e.sessionID == sessionID {
		s.holds[key] = memoryEntry{sessionID: sessionID, expiresAt: s.now().Add(ttl)}
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) Owner(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.live(key); ok {
		return e.sessionID, nil
	}
	return "", nil
}
