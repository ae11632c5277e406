package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// sweepEvery is the number of writes between two passes that drop expired entries
const sweepEvery = 128

type entry struct {
	value     []byte
	expiresAt time.Time // zero means the entry never expires
}

func (e entry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// MemoryStore keeps cached plans in process memory.
// It is used when no redis address is configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	writes  int
	clock   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), clock: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupLocked(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(e.value), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(key, value, ttl)
	return nil
}

func (s *MemoryStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookupLocked(key); ok {
		return false, nil
	}
	s.putLocked(key, value, ttl)
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// lookupLocked returns the live entry for key and drops it if it has expired
func (s *MemoryStore) lookupLocked(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !e.live(s.clock()) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *MemoryStore) putLocked(key string, value []byte, ttl time.Duration) {
	now := s.clock()
	e := entry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.entries[key] = e

	s.writes++
	if s.writes%sweepEvery == 0 {
		for k, old := range s.entries {
			if !old.live(now) {
				delete(s.entries, k)
			}
		}
	}
}
