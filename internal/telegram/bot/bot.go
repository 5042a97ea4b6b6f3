package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/config"
	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/telegram/handlers"
	"github.com/navikit/navigator-backend/internal/telegram/keyboard"
	"github.com/navikit/navigator-backend/internal/telegram/middleware"
	"github.com/navikit/navigator-backend/internal/telegram/render"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	handlers    map[string]handlers.Handler
	quizUC      handlers.QuizUsecase
	keyboard    *keyboard.Builder
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	quizUC handlers.QuizUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:      api,
		cfg:      cfg,
		quizUC:   quizUC,
		keyboard: keyboard.NewBuilder(),
		logger:   logger,
		handlers: make(map[string]handlers.Handler),
		stopChan: make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	b.updatesChan = updates

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	userID := message.From.ID
	chatID := message.Chat.ID

	session, err := b.quizUC.Session(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			b.sendError(chatID, "No active questionnaire. Press /start to begin.")
			return
		}
		ctxzap.Error(ctx, "failed to load session",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	if session.State != entity.StateAnswering {
		b.sendError(chatID, render.ErrInvalidState)
		return
	}

	handler, exists := b.handlers[handlers.HandlerStateAnswering]
	if !exists {
		ctxzap.Warn(ctx, "no answering handler registered",
			zap.Int64("user_id", userID),
		)
		b.sendError(chatID, render.ErrInvalidState)
		return
	}

	msg := &handlers.Message{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendError(chatID, render.ErrGeneric)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "help":
		b.handleHelpCommand(ctx, message)
	case "status":
		b.handleStatusCommand(ctx, message)
	case "restart":
		b.handleRestartCommand(ctx, message)
	default:
		b.sendError(message.Chat.ID, "❌ Unknown command. Try /help")
	}
}

// handleStartCommand handles /start command
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	// Returning users go straight back into the flow instead of the
	// welcome screen.
	session, err := b.quizUC.Session(ctx, message.From.ID)
	if err == nil && session.State != entity.StateStart {
		b.dispatchCallback(ctx, message, "act:start")
		return
	}

	if _, err := b.sendMessage(chatID, render.MsgWelcome, b.keyboard.StartKeyboard()); err != nil {
		ctxzap.Error(ctx, "failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// handleHelpCommand handles /help command
func (b *Bot) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) {
	if _, err := b.sendMessage(message.Chat.ID, render.MsgHelp, nil); err != nil {
		ctxzap.Error(ctx, "failed to send help message",
			zap.Error(err),
		)
	}
}

// handleStatusCommand handles /status command
func (b *Bot) handleStatusCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	session, err := b.quizUC.Session(ctx, message.From.ID)
	if err != nil {
		b.sendError(chatID, render.MsgStatusNone)
		return
	}

	var text string
	switch {
	case session.Results != nil:
		text = fmt.Sprintf(render.MsgStatusBrowsing, len(session.Results.Suggestions))
	case session.State == entity.StateAnswering, session.State == entity.StateGenerating:
		view, viewErr := b.quizUC.Current(ctx, message.From.ID)
		if viewErr != nil {
			text = render.MsgStatusNone
			break
		}
		text = fmt.Sprintf(render.MsgStatusAnswering, len(session.Answers), view.Total)
	default:
		text = render.MsgStatusNone
	}

	if _, err := b.sendMessage(chatID, text, nil); err != nil {
		ctxzap.Error(ctx, "failed to send status message", zap.Error(err))
	}
}

// handleRestartCommand handles /restart command
func (b *Bot) handleRestartCommand(ctx context.Context, message *tgbotapi.Message) {
	b.dispatchCallback(ctx, message, "act:restart")
}

// dispatchCallback feeds a synthetic callback through the callback
// handler so commands and buttons share one code path.
func (b *Bot) dispatchCallback(ctx context.Context, message *tgbotapi.Message, data string) {
	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.sendError(message.Chat.ID, render.ErrGeneric)
		return
	}

	msg := &handlers.Message{
		ChatID:       message.Chat.ID,
		UserID:       message.From.ID,
		MessageID:    message.MessageID,
		CallbackData: data,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "command dispatch error",
			zap.Error(err),
			zap.String("callback_data", data),
		)
		b.sendError(message.Chat.ID, render.ErrGeneric)
	}
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	callbackData, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, "❌ Invalid data")
		return
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", callbackData.Action),
		zap.String("value", callbackData.Value),
		zap.Int64("user_id", query.From.ID),
	)

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	msg := &handlers.Message{
		ChatID:       chatID,
		UserID:       userID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.answerCallback(query.ID, "❌ Handler not found")
		return
	}

	// Answer right away so Telegram does not mark the press as stale.
	// Keyboard refreshes stay silent, longer actions show a hint.
	if callbackData.Action == keyboard.ActionNoop {
		b.answerCallback(query.ID, "")
		return
	}
	b.answerCallback(query.ID, "")

	// Heavy processing runs asynchronously, results and errors are sent
	// as regular chat messages.
	go func(ctx context.Context, m *handlers.Message, uid, cid int64) {
		if err := handler.Handle(ctx, m); err != nil {
			ctxzap.Error(ctx, "callback handler error",
				zap.Error(err),
				zap.Int64("user_id", uid),
			)
			b.sendError(cid, render.ErrGeneric)
		}
	}(ctx, msg, userID, chatID)
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	return b.api.Send(msg)
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.sendMessage(chatID, text, nil); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}
