package handlers

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

var errEmptyAnswer = entity.NewValidationError("please answer with a non-empty message")

// AnswersHandler consumes free-text messages while the questionnaire is
// in progress.
type AnswersHandler struct {
	BaseHandler
	quizUC QuizUsecase
	flow   *Flow
}

func NewAnswersHandler(quizUC QuizUsecase, flow *Flow, sender *MessageSender) *AnswersHandler {
	return &AnswersHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAnswering,
			messageSender: sender,
		},
		quizUC: quizUC,
		flow:   flow,
	}
}

// Handle commits the message text as an answer to the current question.
func (h *AnswersHandler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.WithAction(ctx, "submit_text_answer")

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.flow.HandleFailure(ctx, msg.ChatID, errEmptyAnswer)
		return nil
	}

	result, err := h.quizUC.SubmitText(ctx, msg.UserID, text)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}

	ctxzap.Info(ctx, "text answer accepted",
		zap.String("question_id", result.Answered.ID),
		zap.Int("answer_length", len(text)),
	)

	h.flow.AfterStep(ctx, msg.ChatID, msg.UserID, result)
	return nil
}
