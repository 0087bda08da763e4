// Package session keeps validated uploads and their enrichment output in
// memory between the validation request and the later report, email, and
// manual-review requests that reference them.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qhuube/vatreport/internal/core"
)

// ErrNotFound is returned when a session id is unknown or has expired.
var ErrNotFound = errors.New("session not found or expired")

// DefaultTTL is how long a session stays retrievable after creation.
const DefaultTTL = 24 * time.Hour

// Session is the per-upload state shared across requests.
type Session struct {
	ID         string
	FileName   string
	Original   []byte
	Table      *core.Table
	Validation *core.ValidationResult
	CreatedAt  time.Time
}

// Store is an in-memory session registry with TTL-based expiry. Expired
// entries are swept opportunistically whenever a new session is created, so
// the store needs no background goroutine.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates a store with the given TTL. A non-positive TTL falls back
// to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new session and returns its id.
func (s *Store) Create(fileName string, original []byte, table *core.Table, validation *core.ValidationResult) *Session {
	sess := &Session{
		ID:         uuid.NewString(),
		FileName:   fileName,
		Original:   original,
		Table:      table,
		Validation: validation,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.CreatedAt = s.now()
	s.sweepLocked(sess.CreatedAt)
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session for id, or ErrNotFound if it is unknown or past
// its TTL. An expired entry is removed on access.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().Sub(sess.CreatedAt) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live (possibly expired but unswept) sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) sweepLocked(now time.Time) {
	var swept int
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.ttl {
			delete(s.sessions, id)
			swept++
		}
	}
	if swept > 0 {
		slog.Debug("swept expired sessions", "count", swept, "remaining", len(s.sessions))
	}
}
