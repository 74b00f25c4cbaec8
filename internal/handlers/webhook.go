package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
)

// Webhook returns the push endpoint handler for one configured webhook
// source. It accepts any JSON object, maps the recognized keys into a raw
// event and runs it through the pipeline synchronously. Classification
// failures do not fail the response; the sender still gets an ack.
func (h *Handlers) Webhook(cfg config.SourceConfig) http.HandlerFunc {
	name := cfg.Name
	if name == "" {
		name = "Webhook"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		allowed, err := h.limiter.Allow(r.Context(), name)
		if err != nil {
			// A broken limiter must not block ingestion
			h.logger.Warn("rate limit check failed", logging.Error(err))
			allowed = true
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body")
			return
		}
		defer r.Body.Close()

		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		raw := models.RawEvent{
			Title:       stringField(payload, "title", "Webhook event"),
			Description: firstStringField(payload, "description", "message", "text"),
			URL:         stringField(payload, "url", ""),
			SourceName:  name,
			SourceKind:  models.KindWebhook,
			Payload:     payload,
		}

		metrics.EventsFetched.WithLabelValues(name, string(models.KindWebhook)).Inc()
		h.processor.Process(r.Context(), raw)

		writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
	}
}

func stringField(payload map[string]interface{}, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func firstStringField(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
