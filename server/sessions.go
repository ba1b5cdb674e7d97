package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"story_weaver/generator"
	"story_weaver/metrics"
)

// sessionStore maps cookie ids to sessions. Each session owns its own history
// store; nothing is shared between ids.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
	agent    *generator.Agent
	ttl      time.Duration
	metrics  *metrics.Metrics
}

func newStore(agent *generator.Agent, ttl time.Duration, m *metrics.Metrics) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*generator.Session),
		agent:    agent,
		ttl:      ttl,
		metrics:  m,
	}
}

// resolve returns the session for id, creating a fresh one with a new id when
// id is malformed or unknown. created reports whether a cookie must be set.
func (s *sessionStore) resolve(id string) (sess *generator.Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := s.sessions[id]; ok {
			return sess, false
		}
	}
	newID := uuid.NewString()
	sess = generator.NewSession(newID, s.agent)
	s.sessions[newID] = sess
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess, true
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep drops sessions idle since before now-ttl and returns how many went.
func (s *sessionStore) sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.IdleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

// run sweeps every ttl/2 until ctx is done.
func (s *sessionStore) run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				log.WithField("evicted", n).Info("expired idle sessions")
			}
		}
	}
}
