package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/navikit/navigator-backend/internal/entity"
	"go.uber.org/zap"
)

// Load reads the snapshot file into the store. Malformed records are
// skipped and logged; startup never aborts because of a bad snapshot.
// Callers must invoke Load before the store is shared.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no session snapshot found, starting empty",
				zap.String("path", s.path),
			)
			return nil
		}
		s.logger.Error("failed to read session snapshot, starting empty",
			zap.Error(err),
			zap.String("path", s.path),
		)
		return nil
	}

	// Decode element-wise so a single corrupt record does not discard
	// the rest of the snapshot.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Error("session snapshot is not a JSON array, starting empty",
			zap.Error(err),
			zap.String("path", s.path),
		)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, skipped := 0, 0
	for i, record := range raw {
		var session entity.Session
		if err := json.Unmarshal(record, &session); err != nil {
			s.logger.Warn("skipping malformed session record",
				zap.Error(err),
				zap.Int("index", i),
			)
			skipped++
			continue
		}
		if session.UserID == 0 {
			s.logger.Warn("skipping session record without user id",
				zap.Int("index", i),
			)
			skipped++
			continue
		}
		if session.Answers == nil {
			session.Answers = make(map[string]entity.Answer)
		}
		// GENERATING only exists while a generation call is in flight.
		// A snapshot taken mid-generation means the process died before
		// results arrived, so the user resumes from the answering state
		// and can press generate again.
		if session.State == entity.StateGenerating {
			s.logger.Info("resetting session interrupted mid-generation",
				zap.Int64("user_id", session.UserID),
			)
			session.State = entity.StateAnswering
		}
		s.sessions[session.UserID] = &session
		loaded++
	}

	s.logger.Info("session snapshot loaded",
		zap.Int("loaded", loaded),
		zap.Int("skipped", skipped),
		zap.String("path", s.path),
	)
	return nil
}

// writeSnapshot serializes the full session table to the backing file.
// Written to a temp file first, then renamed, so a crash mid-write
// never leaves a truncated snapshot. Caller must hold s.mu.
func (s *Store) writeSnapshot() error {
	if s.path == "" {
		return nil
	}

	sessions := make([]*entity.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
