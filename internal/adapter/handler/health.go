package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/chatvault/chatvault/internal/domain/repository"
)

// HealthHandler handles health check requests and reports archive counts.
type HealthHandler struct {
	store     repository.MessageStore
	startTime time.Time
}

// NewHealthHandler creates a new health handler. store may be nil.
func NewHealthHandler(store repository.MessageStore) *HealthHandler {
	return &HealthHandler{
		store:     store,
		startTime: time.Now(),
	}
}

// ServeHTTP handles GET /health and GET /ready
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if stats, err := h.store.Stats(ctx); err == nil {
			response["archived_messages"] = stats.Messages
			response["tombstones"] = stats.Tombstones
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
