package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/navikit/navigator-backend/internal/api/middleware"
	"github.com/navikit/navigator-backend/internal/store"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router for liveness probing
// and operational status.
func SetupRouter(sessions *store.Store, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Timeout(10 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Session counters for dashboards
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		stats := sessions.Stats()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			logger.Error("failed to encode status response", zap.Error(err))
		}
	})

	return r
}
