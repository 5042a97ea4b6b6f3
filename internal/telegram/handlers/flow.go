package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/telegram/keyboard"
	"github.com/navikit/navigator-backend/internal/telegram/render"
	"github.com/navikit/navigator-backend/internal/usecase/quiz"
	"go.uber.org/zap"
)

// Flow bundles the shared question/result presentation steps used by both
// the text handler and the callback handler.
type Flow struct {
	bot      *tgbotapi.BotAPI
	sender   *MessageSender
	keyboard *keyboard.Builder
	quizUC   QuizUsecase
	logger   *zap.Logger
}

func NewFlow(
	bot *tgbotapi.BotAPI,
	sender *MessageSender,
	kb *keyboard.Builder,
	quizUC QuizUsecase,
	logger *zap.Logger,
) *Flow {
	return &Flow{
		bot:      bot,
		sender:   sender,
		keyboard: kb,
		quizUC:   quizUC,
		logger:   logger,
	}
}

// SendQuestion presents a question as a fresh message.
func (f *Flow) SendQuestion(ctx context.Context, chatID int64, view *quiz.QuestionView) {
	text := render.RenderQuestion(view.Question, view.Index, view.Total)
	markup := f.keyboard.QuestionKeyboard(view)

	if len(markup.InlineKeyboard) == 0 {
		f.sender.Send(chatID, text, nil)
		return
	}
	f.sender.Send(chatID, text, markup)
}

// EditQuestion refreshes the question message in place after a pending
// input change.
func (f *Flow) EditQuestion(ctx context.Context, chatID int64, messageID int, view *quiz.QuestionView) {
	markup := f.keyboard.QuestionKeyboard(view)
	if err := f.sender.EditMarkup(chatID, messageID, markup); err != nil {
		ctxzap.Warn(ctx, "failed to refresh question keyboard", zap.Error(err))
	}
}

// AfterStep reacts to a committed answer: praise plus the next question,
// or the generation flow when the questionnaire is done.
func (f *Flow) AfterStep(ctx context.Context, chatID, userID int64, result *quiz.StepResult) {
	if result.Done {
		f.sender.Send(chatID, render.Praise(0), nil)
		f.RunGeneration(ctx, chatID, userID)
		return
	}

	f.sender.Send(chatID, render.Praise(result.Next.Index), nil)
	f.SendQuestion(ctx, chatID, result.Next)
}

// RunGeneration drives suggestion generation with progress feedback and
// presents the first suggestion on success.
func (f *Flow) RunGeneration(ctx context.Context, chatID, userID int64) {
	f.sender.Send(chatID, render.MsgGenerating, nil)

	notifier := NewProgressNotifier(f.bot, chatID)
	notifier.Start(ctx)

	session, err := f.quizUC.Generate(ctx, userID)
	notifier.Stop()

	if err != nil {
		ctxzap.Error(ctx, "suggestion generation failed", zap.Error(err))
		sendCriticalMessage(f.bot, chatID, render.ErrGeneration, f.keyboard.RetryGenerateKeyboard(), f.logger)
		return
	}

	total := len(session.Results.Suggestions)
	sendCriticalMessage(f.bot, chatID, fmt.Sprintf(render.MsgResultReady, total), nil, f.logger)
	f.ShowSuggestion(ctx, chatID, &session.Results.Suggestions[0], 0, total)
}

// RunRegeneration replaces the suggestion list with a fresh one.
func (f *Flow) RunRegeneration(ctx context.Context, chatID, userID int64) {
	f.sender.Send(chatID, render.MsgGenerating, nil)

	notifier := NewProgressNotifier(f.bot, chatID)
	notifier.Start(ctx)

	session, err := f.quizUC.Regenerate(ctx, userID)
	notifier.Stop()

	if err != nil {
		ctxzap.Error(ctx, "suggestion regeneration failed", zap.Error(err))
		// Previous results are still attached, keep the user browsing.
		f.sender.Send(chatID, render.ClassifyError(err), nil)
		f.ShowCurrentSuggestion(ctx, chatID, userID)
		return
	}

	total := len(session.Results.Suggestions)
	sendCriticalMessage(f.bot, chatID, fmt.Sprintf(render.MsgResultReady, total), nil, f.logger)
	f.ShowSuggestion(ctx, chatID, &session.Results.Suggestions[0], 0, total)
}

// ShowSuggestion sends one suggestion card with browsing controls.
func (f *Flow) ShowSuggestion(ctx context.Context, chatID int64, s *entity.SuggestionRecord, index, total int) {
	f.sender.SendChunks(chatID, render.RenderSuggestion(s, index, total), f.keyboard.ResultsKeyboard(index, total))
}

// ShowCurrentSuggestion re-sends the suggestion the session points at.
func (f *Flow) ShowCurrentSuggestion(ctx context.Context, chatID, userID int64) {
	s, index, total, err := f.quizUC.Browse(ctx, userID, 0)
	if err != nil {
		f.sender.Send(chatID, render.ClassifyError(err), nil)
		return
	}
	f.ShowSuggestion(ctx, chatID, s, index, total)
}

// RunPlan generates (or fetches) the detailed plan for the suggestion in
// view and sends it in chunks.
func (f *Flow) RunPlan(ctx context.Context, chatID, userID int64) {
	f.sender.Send(chatID, render.MsgPlanGenerating, nil)

	notifier := NewProgressNotifier(f.bot, chatID)
	notifier.Start(ctx)

	s, plan, err := f.quizUC.Plan(ctx, userID)
	notifier.Stop()

	if err != nil {
		ctxzap.Error(ctx, "plan generation failed", zap.Error(err))
		f.sender.Send(chatID, render.ClassifyError(err), nil)
		return
	}

	text := fmt.Sprintf("📋 %s\n\n%s", s.Name, plan)
	f.sender.SendChunks(chatID, text, f.keyboard.PlanKeyboard())
}

// RunAnalysis generates (or fetches) the entrepreneurial profile and sends
// it in chunks with the way back to browsing.
func (f *Flow) RunAnalysis(ctx context.Context, chatID, userID int64) {
	f.sender.Send(chatID, render.MsgAnalysisGenerating, nil)

	notifier := NewProgressNotifier(f.bot, chatID)
	notifier.Start(ctx)

	analysis, err := f.quizUC.Analysis(ctx, userID)
	notifier.Stop()

	if err != nil {
		ctxzap.Error(ctx, "analysis generation failed", zap.Error(err))
		f.sender.Send(chatID, render.ClassifyError(err), nil)
		return
	}

	f.sender.SendChunks(chatID, analysis, f.keyboard.BackToResultsKeyboard())
}

// HandleFailure turns an error into a user-facing message.
func (f *Flow) HandleFailure(ctx context.Context, chatID int64, err error) {
	var validationErr *entity.ValidationError
	if !errors.As(err, &validationErr) {
		ctxzap.Error(ctx, "flow error", zap.Error(err))
	}
	f.sender.Send(chatID, render.ClassifyError(err), nil)
}
