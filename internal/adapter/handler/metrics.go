package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the retention and archive counters in Prometheus
// text format.
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler creates a new metrics handler backed by the default
// Prometheus registry, where the otel exporter publishes.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{
		handler: promhttp.Handler(),
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.handler.ServeHTTP(w, r)
}
