package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/navikit/navigator-backend/internal/config"
	"github.com/navikit/navigator-backend/internal/store"
	"github.com/navikit/navigator-backend/internal/telegram"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	cfg      *config.Config
	bot      telegram.Bot
	server   *http.Server
	sessions *store.Store
	logger   *zap.Logger
}

// Run starts the application and all its daemons
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.bot.Start(ctx); err != nil {
		return err
	}

	// Start HTTP server in goroutine
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Periodic eviction of abandoned sessions
	go a.runEvictionLoop(ctx)

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		cancel()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

// runEvictionLoop drops sessions idle longer than the configured TTL.
func (a *App) runEvictionLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.EvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := a.sessions.EvictOlderThan(a.cfg.SessionTTL)
			if removed > 0 {
				a.logger.Info("Session eviction pass completed",
					zap.Int("removed", removed),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.logger.Info("Stopping telegram bot")
	if err := a.bot.Stop(); err != nil {
		a.logger.Error("Bot shutdown error", zap.Error(err))
	}

	a.logger.Info("Shutting down server gracefully")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
