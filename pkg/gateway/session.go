package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/avasquez/canvasagent/pkg/canvas"
)

// Session is one authenticated client's continuation state, keyed by an
// opaque token. Resuming with the key restores the pending course
// catalog for the download sub-protocol.
type Session struct {
	Key            string
	PendingCourses []canvas.Course
	CreatedAt      time.Time
	LastActive     time.Time
}

// SessionStore tracks sessions with an idle TTL. Expired sessions are
// pruned lazily on access and by a periodic sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   zerolog.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewSessionStore creates a store with the given idle TTL.
func NewSessionStore(ttl time.Duration, logger zerolog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// TTL returns the configured idle TTL.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create mints a new session with an opaque key.
func (s *SessionStore) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := &Session{
		Key:        uuid.NewString(),
		CreatedAt:  now,
		LastActive: now,
	}
	s.sessions[session.Key] = session
	return session
}

// Resume returns the session for key if it exists and has not idled out.
// An expired session is removed on the spot.
func (s *SessionStore) Resume(key string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(session.LastActive) > s.ttl {
		delete(s.sessions, key)
		return nil, false
	}
	session.LastActive = s.now()
	return session, true
}

// Touch refreshes a session's idle timer.
func (s *SessionStore) Touch(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.LastActive = s.now()
}

// Pending returns the session's pending course catalog. Sessions are
// shared between connections resuming the same key, so the field is
// only read under the store lock.
func (s *SessionStore) Pending(session *Session) []canvas.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.PendingCourses
}

// SetPending stores the pending catalog and refreshes the idle timer.
func (s *SessionStore) SetPending(session *Session, courses []canvas.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.PendingCourses = courses
	session.LastActive = s.now()
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes every expired session and returns how many were pruned.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	now := s.now()
	for key, session := range s.sessions {
		if now.Sub(session.LastActive) > s.ttl {
			delete(s.sessions, key)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Debug().Int("pruned", pruned).Int("remaining", len(s.sessions)).Msg("swept expired sessions")
	}
	return pruned
}

// StartSweeper schedules a periodic sweep so idle sessions do not
// accumulate between accesses.
func (s *SessionStore) StartSweeper() {
	if s.cron != nil {
		return
	}
	s.cron = cron.New()
	s.cron.AddFunc("@every 1m", func() { s.Sweep() })
	s.cron.Start()
}

// StopSweeper stops the periodic sweep.
func (s *SessionStore) StopSweeper() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
