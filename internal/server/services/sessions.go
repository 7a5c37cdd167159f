package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/metrics"
	"github.com/dmitrijs2005/signify/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SessionService holds the in-memory sessions of this process, keyed by the
// session id carried in access tokens.
type SessionService struct {
	store store
	log   logging.Logger
	now   func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService constructs a registry whose sessions run user-scoped
// work on db.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *SessionService {
	return &SessionService{
		store:    store{db: db, repos: m},
		log:      log.With("module", "sessions"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (s *SessionService) newSession(id, userID string) *Session {
	return &Session{
		id:       id,
		userID:   userID,
		store:    s.store,
		log:      s.log.With("session_id", id),
		now:      s.now,
		lastSeen: s.now(),
	}
}

// Open starts a fresh session for userID with a new id.
func (s *SessionService) Open(userID string) *Session {
	sess := s.newSession(uuid.NewString(), userID)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	return sess
}

// Resume returns the session with the given id, recreating it when this
// process no longer holds it. A recreated session syncs activity again.
func (s *SessionService) Resume(sessionID, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		if sess.userID != userID {
			return nil, common.ErrSessionNotFound
		}
		sess.touch(s.now())
		return sess, nil
	}

	sess := s.newSession(sessionID, userID)
	s.sessions[sessionID] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess, nil
}

// Get returns the live session sessionID owned by userID.
func (s *SessionService) Get(sessionID, userID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || sess.userID != userID {
		return nil, common.ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Close drops a session together with its pending event and sync flag.
func (s *SessionService) Close(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PruneIdle drops sessions not used for longer than maxIdle and returns how
// many were dropped.
func (s *SessionService) PruneIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	pruned := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			pruned++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if pruned > 0 {
		s.log.Info(ctx, "pruned idle sessions", "count", pruned)
	}
	return pruned
}
