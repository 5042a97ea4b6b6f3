package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/navikit/navigator-backend/internal/api"
	"github.com/navikit/navigator-backend/internal/catalog"
	"github.com/navikit/navigator-backend/internal/config"
	"github.com/navikit/navigator-backend/internal/engine"
	"github.com/navikit/navigator-backend/internal/generator"
	"github.com/navikit/navigator-backend/internal/integration/llm"
	"github.com/navikit/navigator-backend/internal/pkg/formatter"
	"github.com/navikit/navigator-backend/internal/store"
	"github.com/navikit/navigator-backend/internal/telegram"
	"github.com/navikit/navigator-backend/internal/usecase/quiz"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Load question catalog
	questionCatalog, err := catalog.Load(cfg.QuestionsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load question catalog: %w", err)
	}
	logger.Info("Question catalog loaded",
		zap.Int("question_count", questionCatalog.Len()),
	)

	// Initialize session store and restore the snapshot
	sessions := store.New(cfg.SnapshotPath, logger)
	if err := sessions.Load(); err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	logger.Info("Session store initialized",
		zap.String("snapshot_path", cfg.SnapshotPath),
	)

	// Initialize completion client (with mock support)
	var completionClient generator.CompletionClient
	if cfg.EnableMocks {
		logger.Info("Using mock completion client")
		completionClient = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using OpenAI completion client",
			zap.String("model", cfg.OpenAICfg.Model),
		)
		completionClient = llm.NewConnector(cfg.OpenAICfg, logger)
	}

	// Initialize domain components
	questionEngine := engine.New(questionCatalog)
	suggestionGenerator := generator.New(completionClient, questionCatalog, cfg.OpenAICfg, logger)
	quizUC := quiz.NewUsecase(sessions, questionEngine, suggestionGenerator, logger)
	logger.Info("Use cases initialized")

	// Initialize telegram bot
	formatterFactory := formatter.NewFactory()
	bot, err := telegram.NewBot(&cfg.TelegramCfg, quizUC, formatterFactory, logger)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	// Setup router
	router := api.SetupRouter(sessions, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		cfg:      cfg,
		bot:      bot,
		server:   server,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// setupLogger builds the zap logger for the requested level. Production
// encoding everywhere, the level is the only knob.
func setupLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
