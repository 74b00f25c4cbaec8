// Package handlers implements the HTTP surface: inbound webhook endpoints,
// the history query API and the live subscriber socket.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/soulkill3r/pythia/internal/hub"
	"github.com/soulkill3r/pythia/internal/models"
	"github.com/soulkill3r/pythia/internal/ratelimit"
)

// Processor is the pipeline capability the webhook endpoints feed.
type Processor interface {
	Process(ctx context.Context, raw models.RawEvent) bool
}

// Handlers bundles the HTTP handlers and their dependencies.
type Handlers struct {
	hub       *hub.Hub
	processor Processor
	limiter   ratelimit.RateLimiter
	logger    *slog.Logger
}

// New constructs the handler set. limiter may be a NoOpRateLimiter.
func New(h *hub.Hub, processor Processor, limiter ratelimit.RateLimiter, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	return &Handlers{
		hub:       h,
		processor: processor,
		limiter:   limiter,
		logger:    logger,
	}
}

// Events returns the current history buffer, for clients that cannot hold a
// live connection.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	history := h.hub.History()
	if history == nil {
		history = []models.EvaluatedEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": history})
}

// Health reports liveness and the current subscriber count.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": h.hub.SubscriberCount(),
	})
}

// Ready reports readiness.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
