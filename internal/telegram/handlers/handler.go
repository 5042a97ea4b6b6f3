package handlers

import (
	"context"

	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/usecase/quiz"
)

// Handler state constants
const (
	HandlerStateCallback  = "CALLBACK"
	HandlerStateAnswering = "ANSWERING"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	CallbackData string
	CallbackID   string
}

// QuizUsecase is the questionnaire flow surface the handlers depend on.
type QuizUsecase interface {
	Begin(ctx context.Context, userID, chatID int64) (*quiz.QuestionView, error)
	Restart(ctx context.Context, userID, chatID int64) (*quiz.QuestionView, error)
	Current(ctx context.Context, userID int64) (*quiz.QuestionView, error)
	Session(ctx context.Context, userID int64) (*entity.Session, error)
	SubmitText(ctx context.Context, userID int64, text string) (*quiz.StepResult, error)
	SelectChoice(ctx context.Context, userID int64, value string) (*quiz.StepResult, error)
	ToggleMulti(ctx context.Context, userID int64, value string) (*quiz.QuestionView, error)
	AdjustSlider(ctx context.Context, userID int64, delta int) (*quiz.QuestionView, error)
	AdjustRating(ctx context.Context, userID int64, itemName string, delta int) (*quiz.QuestionView, error)
	AdjustAllocation(ctx context.Context, userID int64, area string, delta int) (*quiz.QuestionView, error)
	SubmitPending(ctx context.Context, userID int64) (*quiz.StepResult, error)
	Back(ctx context.Context, userID int64) (*quiz.QuestionView, error)
	Generate(ctx context.Context, userID int64) (*entity.Session, error)
	Regenerate(ctx context.Context, userID int64) (*entity.Session, error)
	Browse(ctx context.Context, userID int64, delta int) (*entity.SuggestionRecord, int, int, error)
	Plan(ctx context.Context, userID int64) (*entity.SuggestionRecord, string, error)
	Analysis(ctx context.Context, userID int64) (string, error)
}

// Handler defines the interface for state-specific handlers
type Handler interface {
	// Handle processes a message for this state
	Handle(ctx context.Context, msg *Message) error

	// GetState returns the state this handler manages
	GetState() string
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	stateName     string
	messageSender *MessageSender
}

// GetState implements Handler
func (h *BaseHandler) GetState() string {
	return h.stateName
}

// sendMessage is a convenience wrapper for messageSender.Send
func (h *BaseHandler) sendMessage(chatID int64, text string, markup interface{}) {
	if h.messageSender != nil {
		h.messageSender.Send(chatID, text, markup)
	}
}

// validStates defines all valid handler states
var validStates = map[string]bool{
	HandlerStateCallback:  true,
	HandlerStateAnswering: true,
}

// IsValidState checks if a state is valid for handler registration
func IsValidState(state string) bool {
	_, ok := validStates[state]
	return ok
}
