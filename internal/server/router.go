package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/handlers"
	"github.com/soulkill3r/pythia/internal/middleware"
)

// NewRouter constructs a ServeMux with the API routes registered, plus one
// push endpoint per configured webhook source.
func NewRouter(h *handlers.Handlers, webhooks []config.SourceConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/events", h.Events)
	mux.HandleFunc("/ws", h.Subscribe)

	for _, cfg := range webhooks {
		path := cfg.Path
		if path == "" {
			path = "/webhook"
		}
		mux.HandleFunc(path, h.Webhook(cfg))
	}

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
