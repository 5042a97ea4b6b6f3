package quiz

import (
	"context"

	"github.com/navikit/navigator-backend/internal/entity"
)

// SessionStore is the session persistence surface the quiz flow depends
// on. Update and UpdateOrCreate run the mutation under the store's lock;
// Get returns a detached copy.
type SessionStore interface {
	Get(userID int64) (*entity.Session, error)
	Update(userID int64, fn func(*entity.Session) error) error
	UpdateOrCreate(userID, chatID int64, fn func(*entity.Session) error) error
	Delete(userID int64)
}

// SuggestionGenerator produces suggestions, plans and the psychological
// profile for completed sessions.
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, session *entity.Session) ([]entity.SuggestionRecord, error)
	RegenerateSuggestions(ctx context.Context, session *entity.Session, avoid []string) ([]entity.SuggestionRecord, error)
	GeneratePlan(ctx context.Context, session *entity.Session, s *entity.SuggestionRecord) (string, error)
	GenerateAnalysis(ctx context.Context, session *entity.Session) (string, error)
}
