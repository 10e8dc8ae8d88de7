package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cargoline/apiserver/types"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store keeps session payloads server-side, keyed by an opaque id.
type Store interface {
	Get(ctx context.Context, id string) (types.Session, error)
	Set(ctx context.Context, id string, sess types.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   types.Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Sessions do not survive a restart
// and are not shared between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return types.Session{}, ErrNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return types.Session{}, ErrNotFound
	}
	return entry.session, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, sess types.Session, ttl time.Duration) error {
	if id == "" {
		return errors.New("session id is required")
	}
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{session: sess, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// DeleteExpired drops every expired entry and reports how many were removed.
func (s *MemoryStore) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor calls DeleteExpired every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.DeleteExpired()
		}
	}
}
