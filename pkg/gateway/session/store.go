// Package session manages in-memory chat sessions: one profile plus an
// ordered, append-only turn history per opaque session id.
package session

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for lookups against an unknown session id. It is
// distinct from an existing session with an empty history.
var ErrNotFound = errors.New("session not found")

// Turn is one completed exchange. Immutable once appended.
type Turn struct {
	UserText     string
	ResponseText string
	Language     string // language context in effect for this turn
}

// Session is a snapshot of one conversation: the profile supplied at
// creation and the turn history so far. The snapshot is detached from the
// store; mutating it has no effect on stored state.
type Session struct {
	ID      string
	Profile map[string]any
	History []Turn
}

type entry struct {
	profile    map[string]any
	history    []Turn
	lastActive time.Time
}

// Store is a process-local session registry. All mutation happens under the
// store lock, so an append is an atomic read-modify-write and readers never
// observe a partially appended turn.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create allocates a fresh session for profile and returns its id. The
// profile is stored as opaque data; no schema is enforced here.
func (s *Store) Create(profile map[string]any) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{
		profile:    maps.Clone(profile),
		lastActive: s.now(),
	}
	return id
}

// Get returns a snapshot of the session, or ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Session{
		ID:      id,
		Profile: maps.Clone(e.profile),
		History: append([]Turn(nil), e.history...),
	}, nil
}

// AppendTurn records a completed turn. Appending to an unknown id returns
// ErrNotFound without creating a session.
func (s *Store) AppendTurn(id string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	e.history = append(e.history, turn)
	e.lastActive = s.now()
	return nil
}

// Delete removes the session. Deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor evicts sessions idle longer than ttl, sweeping at the given
// interval until ctx is cancelled. A ttl of 0 disables eviction entirely,
// matching the store's default unbounded behavior.
func (s *Store) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle(ttl)
			}
		}
	}()
}

func (s *Store) evictIdle(ttl time.Duration) {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.lastActive.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
