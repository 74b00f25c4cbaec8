package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/models"
)

// monitorServer serves a heartbeat snapshot that tests mutate between polls.
func monitorServer(t *testing.T) (*httptest.Server, *map[string][]heartbeat) {
	t.Helper()
	snapshot := map[string][]heartbeat{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status-page/heartbeat/default" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"heartbeatList": snapshot})
	}))
	t.Cleanup(server.Close)
	return server, &snapshot
}

func intp(v int) *int { return &v }

func newTestMonitor(t *testing.T, url string) *monitorSource {
	t.Helper()
	src, err := newMonitorSource(config.SourceConfig{Type: "monitor", Name: "Homelab", URL: url})
	require.NoError(t, err)
	return src
}

func TestMonitorSource_NoEventOnFirstObservation(t *testing.T) {
	server, snapshot := monitorServer(t)
	*snapshot = map[string][]heartbeat{
		"db-1": {{Status: intp(1), Name: "Database"}},
	}

	src := newTestMonitor(t, server.URL)
	assert.Empty(t, src.Fetch(context.Background()))
	assert.Equal(t, 1, src.lastStates["db-1"])
}

func TestMonitorSource_EmitsOnTransition(t *testing.T) {
	server, snapshot := monitorServer(t)
	*snapshot = map[string][]heartbeat{
		"db-1": {{Status: intp(1), Name: "Database"}},
	}

	src := newTestMonitor(t, server.URL)
	require.Empty(t, src.Fetch(context.Background()))

	*snapshot = map[string][]heartbeat{
		"db-1": {{Status: intp(0), Name: "Database", Msg: "connection refused"}},
	}
	events := src.Fetch(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, "Database is DOWN", events[0].Title)
	assert.Equal(t, "connection refused", events[0].Description)
	assert.Equal(t, "Homelab", events[0].SourceName)
	assert.Equal(t, models.KindMonitor, events[0].SourceKind)

	// Recovery emits an UP event
	*snapshot = map[string][]heartbeat{
		"db-1": {{Status: intp(1), Name: "Database"}},
	}
	events = src.Fetch(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, "Database is UP", events[0].Title)
	assert.Equal(t, "Monitor transitioned to UP", events[0].Description)
}

func TestMonitorSource_NoEventOnSteadyState(t *testing.T) {
	server, snapshot := monitorServer(t)
	*snapshot = map[string][]heartbeat{
		"db-1": {{Status: intp(1), Name: "Database"}},
	}

	src := newTestMonitor(t, server.URL)
	require.Empty(t, src.Fetch(context.Background()))
	assert.Empty(t, src.Fetch(context.Background()))
	assert.Empty(t, src.Fetch(context.Background()))
}

func TestMonitorSource_UsesLatestHeartbeat(t *testing.T) {
	server, snapshot := monitorServer(t)
	*snapshot = map[string][]heartbeat{
		"web-1": {
			{Status: intp(0), Name: "Web"},
			{Status: intp(1), Name: "Web"},
		},
	}

	src := newTestMonitor(t, server.URL)
	require.Empty(t, src.Fetch(context.Background()))
	assert.Equal(t, 1, src.lastStates["web-1"])
}

func TestMonitorSource_MultipleMonitors(t *testing.T) {
	server, snapshot := monitorServer(t)
	*snapshot = map[string][]heartbeat{
		"db-1":  {{Status: intp(1), Name: "Database"}},
		"web-1": {{Status: intp(1), Name: "Web"}},
	}

	src := newTestMonitor(t, server.URL)
	require.Empty(t, src.Fetch(context.Background()))

	*snapshot = map[string][]heartbeat{
		"db-1":  {{Status: intp(0), Name: "Database"}},
		"web-1": {{Status: intp(0), Name: "Web"}},
	}
	events := src.Fetch(context.Background())
	assert.Len(t, events, 2)
}

func TestMonitorSource_FetchErrorYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := newTestMonitor(t, server.URL)
	assert.Empty(t, src.Fetch(context.Background()))
}

func TestMonitorSource_SendsAPIKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"heartbeatList": map[string][]heartbeat{}})
	}))
	defer server.Close()

	src, err := newMonitorSource(config.SourceConfig{
		Type: "monitor", Name: "Secured", URL: server.URL, APIKey: "secret",
	})
	require.NoError(t, err)

	src.Fetch(context.Background())
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestWebhookSource_FetchIsNoOp(t *testing.T) {
	src, err := newWebhookSource(config.SourceConfig{Type: "webhook", Name: "Hooks"})
	require.NoError(t, err)
	assert.Empty(t, src.Fetch(context.Background()))
	assert.Equal(t, "/webhook", src.Path())
}
