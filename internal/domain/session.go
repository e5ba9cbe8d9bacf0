package domain

import (
	"context"
	"sync"
	"time"

	"github.com/Vovarama1992/qrpage/internal/models"
)

// SessionStore keeps the per-owner conversation step. Entries expire
// after ttl and read back as idle.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]models.Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]models.Session),
	}
}

func (s *SessionStore) Set(ownerID int64, state models.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == models.StateIdle {
		delete(s.sessions, ownerID)
		return
	}
	s.sessions[ownerID] = models.Session{
		OwnerID:   ownerID,
		State:     state,
		ExpiresAt: s.now().Add(s.ttl),
	}
}

func (s *SessionStore) Get(ownerID int64) models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[ownerID]
	if !ok {
		return models.StateIdle
	}
	if !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, ownerID)
		return models.StateIdle
	}
	return sess.State
}

// Complete resets the owner to idle only if they are still in the
// expected state, so a stale handler cannot clobber a newer step.
func (s *SessionStore) Complete(ownerID int64, expected models.SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[ownerID]
	if !ok || sess.State != expected {
		return false
	}
	delete(s.sessions, ownerID)
	return true
}

func (s *SessionStore) Reset(ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
}

// Sweep drops expired entries and returns how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunJanitor sweeps every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}
