package server

import (
	"net/http"

	"github.com/chatvault/chatvault/internal/adapter/handler"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler
}

// NewRouter creates the HTTP router with all handlers.
func NewRouter(handlers *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", handlers.Health)
	mux.Handle("/ready", handlers.Health)

	if handlers.Metrics != nil {
		mux.Handle("/metrics", handlers.Metrics)
	}

	return mux
}
