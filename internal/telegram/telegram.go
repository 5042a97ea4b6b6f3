package telegram

import (
	"context"
	"fmt"

	"github.com/navikit/navigator-backend/internal/config"
	"github.com/navikit/navigator-backend/internal/pkg/formatter"
	"github.com/navikit/navigator-backend/internal/telegram/bot"
	"github.com/navikit/navigator-backend/internal/telegram/handlers"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	quizUC handlers.QuizUsecase,
	formatterFactory *formatter.Factory,
	logger *zap.Logger,
) (Bot, error) {
	b, err := bot.New(cfg, quizUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, quizUC, formatterFactory, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(
	b *bot.Bot,
	quizUC handlers.QuizUsecase,
	formatterFactory *formatter.Factory,
	logger *zap.Logger,
) {
	api := b.GetAPI()
	kb := b.GetKeyboard()

	sender := handlers.NewMessageSender(api, logger)
	flow := handlers.NewFlow(api, sender, kb, quizUC, logger)

	// Callback handler covers all button clicks.
	callbackHandler := handlers.NewCallbackHandler(quizUC, flow, sender, formatterFactory)
	b.RegisterHandler(callbackHandler)

	// Answers handler covers free-text questionnaire input.
	answersHandler := handlers.NewAnswersHandler(quizUC, flow, sender)
	b.RegisterHandler(answersHandler)

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 2),
	)
}
