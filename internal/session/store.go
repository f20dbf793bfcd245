// Package session provides the in-memory store of reasoning sessions.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports an id with no live session behind it.
var ErrNotFound = errors.New("session not found")

// Session is a point-in-time view of one reasoning session. Clauses is a
// copy; mutating it does not touch the store.
type Session struct {
	ID        string
	Clauses   []string
	CreatedAt time.Time
}

type entry struct {
	mu        sync.Mutex
	clauses   []string
	createdAt time.Time
	lastUsed  time.Time
}

// Store holds sessions keyed by id. Every mutation of a session's clauses
// runs under that session's own lock, so concurrent asserts against one
// session serialize while distinct sessions proceed in parallel.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
}

// New returns a store. A positive ttl starts a janitor that evicts
// sessions idle longer than ttl; zero disables eviction.
func New(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	} else {
		close(s.done)
	}
	return s
}

// Create registers a new session seeded with the given clauses and
// returns its id.
func (s *Store) Create(seed []string) string {
	id := uuid.NewString()
	now := time.Now()
	e := &entry{
		clauses:   append([]string(nil), seed...),
		createdAt: now,
		lastUsed:  now,
	}
	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()
	return id
}

// With runs fn while holding the session's lock. fn receives the live
// clause slice and returns its replacement; returning the input unchanged
// leaves the session as it was. The store's map lock is not held while fn
// runs.
func (s *Store) With(id string, fn func(clauses []string) ([]string, error)) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = time.Now()
	next, err := fn(e.clauses)
	if err != nil {
		return err
	}
	e.clauses = next
	return nil
}

// Snapshot returns a copy of the session's current state.
func (s *Store) Snapshot(id string) (Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = time.Now()
	return Session{
		ID:        id,
		Clauses:   append([]string(nil), e.clauses...),
		CreatedAt: e.createdAt,
	}, nil
}

// List returns snapshots of every live session, ordered by creation time.
func (s *Store) List() []Session {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	out := make([]Session, 0, len(ids))
	for _, id := range ids {
		if snap, err := s.Snapshot(id); err == nil {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Delete removes the session. Deleting twice fails the second time.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// Close stops the janitor and waits for it to exit.
func (s *Store) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

func (s *Store) janitor() {
	defer close(s.done)
	interval := s.ttl / 2
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.evictIdle(now)
		}
	}
}

func (s *Store) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.mu.Lock()
		idle := now.Sub(e.lastUsed)
		e.mu.Unlock()
		if idle > s.ttl {
			delete(s.entries, id)
		}
	}
}
