// Package ratelimit implements sliding-window attempt limiting keyed by an
// identity (a user id, a client IP). Attempt history lives in a Store so the
// limiter works the same in one process or across many.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store records attempts per key. Each attempt carries an id so a single
// attempt can be taken back.
type Store interface {
	// Reserve discards attempts of key older than since and, when fewer than
	// limit remain, records attempt id at the given time. Check and record are
	// atomic: concurrent callers never exceed limit. It reports whether the
	// attempt was recorded.
	Reserve(ctx context.Context, key, id string, at, since time.Time, limit int) (bool, error)
	// Release removes attempt id of key. Unknown ids are ignored.
	Release(ctx context.Context, key, id string) error
}

type attempt struct {
	id string
	at time.Time
}

// MemoryStore keeps attempt history in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]attempt
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[string][]attempt)}
}

// Reserve implements Store.
func (s *MemoryStore) Reserve(_ context.Context, key, id string, at, since time.Time, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.attempts[key][:0]
	for _, a := range s.attempts[key] {
		if !a.at.Before(since) {
			kept = append(kept, a)
		}
	}
	if len(kept) >= limit {
		s.set(key, kept)
		return false, nil
	}
	s.attempts[key] = append(kept, attempt{id: id, at: at})
	return true, nil
}

// Release implements Store.
func (s *MemoryStore) Release(_ context.Context, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.attempts[key][:0]
	for _, a := range s.attempts[key] {
		if a.id != id {
			kept = append(kept, a)
		}
	}
	s.set(key, kept)
	return nil
}

// set stores attempts for key, dropping keys with no attempts left.
func (s *MemoryStore) set(key string, attempts []attempt) {
	if len(attempts) == 0 {
		delete(s.attempts, key)
		return
	}
	s.attempts[key] = attempts
}
