package store

import (
	"sync"
	"time"

	"github.com/navikit/navigator-backend/internal/entity"
	"go.uber.org/zap"
)

// Store is the concurrency-safe owner of all session records. A single
// process-wide lock guards the map, every session record, and the
// snapshot file: all mutation happens inside Update/UpdateOrCreate while
// the lock is held, and readers only ever receive clones, so the
// snapshot marshal never observes a half-written session.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*entity.Session
	path     string
	logger   *zap.Logger
}

// New creates an empty store backed by the snapshot file at path. An
// empty path disables persistence (memory only).
func New(path string, logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[int64]*entity.Session),
		path:     path,
		logger:   logger,
	}
}

// Get returns a copy of the session for the user, or ErrSessionNotFound.
func (s *Store) Get(userID int64) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update runs fn on the user's session while holding the store lock and
// persists the snapshot afterwards. When fn returns an error the session
// keeps whatever fn left in place but the snapshot is not rewritten.
func (s *Store) Update(userID int64, fn func(*entity.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return entity.ErrSessionNotFound
	}
	return s.apply(session, fn)
}

// UpdateOrCreate is Update for flows that may see the user for the first
// time. A missing session is created positioned at the first question.
func (s *Store) UpdateOrCreate(userID, chatID int64, fn func(*entity.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		session = entity.NewSession(userID, chatID)
		s.sessions[userID] = session
		s.logger.Info("session created", zap.Int64("user_id", userID))
	}
	return s.apply(session, fn)
}

// apply mutates one session and persists. Caller must hold s.mu.
func (s *Store) apply(session *entity.Session, fn func(*entity.Session) error) error {
	if err := fn(session); err != nil {
		return err
	}
	session.Touch()

	if err := s.writeSnapshot(); err != nil {
		s.logger.Error("failed to persist session snapshot",
			zap.Error(err),
			zap.Int64("user_id", session.UserID),
		)
	}
	return nil
}

// Delete removes the session for the user.
func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	if err := s.writeSnapshot(); err != nil {
		s.logger.Error("failed to persist session snapshot after delete",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
}

// EvictOlderThan removes sessions whose last activity is older than age
// and returns the number removed.
func (s *Store) EvictOlderThan(age time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age)
	removed := 0
	for userID, session := range s.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(s.sessions, userID)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("evicted stale sessions", zap.Int("count", removed))
		if err := s.writeSnapshot(); err != nil {
			s.logger.Error("failed to persist session snapshot after eviction",
				zap.Error(err),
			)
		}
	}
	return removed
}

// Stats summarizes the session table for the status endpoint.
type Stats struct {
	Total     int `json:"total"`
	Answering int `json:"answering"`
	Completed int `json:"completed"`
	Browsing  int `json:"browsing"`
}

// Stats returns counters over the current session table.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Total: len(s.sessions)}
	for _, session := range s.sessions {
		if session.Completed {
			stats.Completed++
		}
		switch session.State {
		case entity.StateAnswering:
			stats.Answering++
		case entity.StateBrowsing:
			stats.Browsing++
		}
	}
	return stats
}
