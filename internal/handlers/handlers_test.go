package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulkill3r/pythia/internal/hub"
	"github.com/soulkill3r/pythia/internal/models"
)

type recordingProcessor struct {
	raw      []models.RawEvent
	accepted bool
}

func (p *recordingProcessor) Process(ctx context.Context, raw models.RawEvent) bool {
	p.raw = append(p.raw, raw)
	return p.accepted
}

func newTestHandlers() (*Handlers, *hub.Hub, *recordingProcessor) {
	h := hub.New(nil)
	proc := &recordingProcessor{accepted: true}
	return New(h, proc, nil, nil), h, proc
}

func TestEvents_EmptyHistory(t *testing.T) {
	hs, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	hs.Events(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Events []models.EvaluatedEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Events)
	// Empty history must serialize as [], not null
	assert.Contains(t, w.Body.String(), `"events":[]`)
}

func TestEvents_ReturnsHistoryInOrder(t *testing.T) {
	hs, eventHub, _ := newTestHandlers()
	eventHub.Publish(models.EvaluatedEvent{ID: "1", Title: "First", Criticality: 3, Category: models.CategoryNominal})
	eventHub.Publish(models.EvaluatedEvent{ID: "2", Title: "Second", Criticality: 7, Category: models.CategoryDivergence})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	hs.Events(w, req)

	var body struct {
		Events []models.EvaluatedEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 2)
	assert.Equal(t, "First", body.Events[0].Title)
	assert.Equal(t, "Second", body.Events[1].Title)
}

func TestEvents_MethodNotAllowed(t *testing.T) {
	hs, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	hs.Events(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealth_ReportsConnections(t *testing.T) {
	hs, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	hs.Health(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["connections"])
}

func TestReady(t *testing.T) {
	hs, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	hs.Ready(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
