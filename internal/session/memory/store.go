package memory

import (
	"context"
	"sync"
	"time"

	"regnify/internal/port"
)

type entry struct {
	count     int64
	expiresAt time.Time
}

// Store is a single-process SessionStore. State is lost on restart and is not
// shared between instances; use the redis store for those deployments.
type Store struct {
	mu       sync.Mutex
	failures map[string]*entry
	locks    map[string]time.Time
	revoked  map[string]time.Time
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty in-memory session store.
func New(opts ...Option) *Store {
	s := &Store{
		failures: make(map[string]*entry),
		locks:    make(map[string]time.Time),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ port.SessionStore = (*Store)(nil)

func (s *Store) IncrementFailures(_ context.Context, username string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.failures[username]
	if e == nil || !now.Before(e.expiresAt) {
		e = &entry{expiresAt: now.Add(ttl)}
		s.failures[username] = e
	}
	e.count++
	return e.count, nil
}

func (s *Store) ResetFailures(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, username)
	return nil
}

func (s *Store) Lock(_ context.Context, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[username] = s.now().Add(ttl)
	return nil
}

func (s *Store) Unlock(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, username)
	return nil
}

func (s *Store) LockedFor(_ context.Context, username string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.locks[username]
	if !ok {
		return 0, nil
	}
	remaining := until.Sub(s.now())
	if remaining <= 0 {
		delete(s.locks, username)
		return 0, nil
	}
	return remaining, nil
}

func (s *Store) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = s.now().Add(ttl)
	return nil
}

func (s *Store) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Sweep drops expired entries. Lookups already ignore them; this only bounds memory.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.failures {
		if !now.Before(e.expiresAt) {
			delete(s.failures, k)
		}
	}
	for k, until := range s.locks {
		if !now.Before(until) {
			delete(s.locks, k)
		}
	}
	for k, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, k)
		}
	}
}

// Len reports the number of tracked entries across all maps.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failures) + len(s.locks) + len(s.revoked)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
