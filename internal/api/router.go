package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamehub/internal/api/apierr"
	"gamehub/internal/api/handler"
	"gamehub/internal/api/response"
	"gamehub/internal/middleware"
	"gamehub/internal/services/roster"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger    *slog.Logger
	Roster    *roster.Service
	WSHandler http.Handler
}

// NewRouter creates the HTTP router: the websocket hub endpoint, the health
// and player endpoints, and Prometheus metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.Roster)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	// The websocket endpoint skips the logging middleware: its requests stay
	// open for the connection's lifetime
	r.Handle("/ws", cfg.WSHandler).Methods(http.MethodGet)

	// Metrics for Prometheus scraping
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)

	return r
}

// healthHandler reports liveness
func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
