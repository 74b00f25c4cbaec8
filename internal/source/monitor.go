package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
)

// monitorSource polls an Uptime Kuma status page heartbeat endpoint and
// emits one event per monitor whose up/down status changed since the last
// poll. The first observation of a monitor establishes a baseline and never
// emits.
type monitorSource struct {
	name     string
	baseURL  string
	slug     string
	apiKey   string
	interval time.Duration
	client   *http.Client

	// monitor id -> last known status (1=up, 0=down)
	lastStates map[string]int
	logger     *slog.Logger
}

func newMonitorSource(cfg config.SourceConfig) (*monitorSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("monitor source %q: url is required", cfg.Name)
	}
	name := cfg.Name
	if name == "" {
		name = "monitor"
	}
	slug := cfg.Slug
	if slug == "" {
		slug = "default"
	}
	return &monitorSource{
		name:       name,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		slug:       slug,
		apiKey:     cfg.APIKey,
		interval:   interval(cfg),
		client:     &http.Client{Timeout: 10 * time.Second},
		lastStates: make(map[string]int),
		logger:     slog.Default().With(logging.Source(name)),
	}, nil
}

func (s *monitorSource) Name() string            { return s.name }
func (s *monitorSource) Kind() models.SourceKind { return models.KindMonitor }
func (s *monitorSource) Interval() time.Duration { return s.interval }

// heartbeat is one status observation in the snapshot.
type heartbeat struct {
	Status *int   `json:"status"`
	Name   string `json:"name"`
	Msg    string `json:"msg"`
}

type heartbeatSnapshot struct {
	HeartbeatList map[string][]heartbeat `json:"heartbeatList"`
}

func (s *monitorSource) Fetch(ctx context.Context) []models.RawEvent {
	endpoint := fmt.Sprintf("%s/api/status-page/heartbeat/%s", s.baseURL, s.slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.logger.Error("monitor fetch error", logging.Error(err))
		metrics.FetchErrors.WithLabelValues(s.name).Inc()
		return nil
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("monitor fetch error", logging.Error(err))
		metrics.FetchErrors.WithLabelValues(s.name).Inc()
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("monitor fetch error",
			slog.Int("status", resp.StatusCode))
		metrics.FetchErrors.WithLabelValues(s.name).Inc()
		return nil
	}

	var snapshot heartbeatSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		s.logger.Error("monitor decode error", logging.Error(err))
		metrics.FetchErrors.WithLabelValues(s.name).Inc()
		return nil
	}

	var events []models.RawEvent
	for monitorID, heartbeats := range snapshot.HeartbeatList {
		if len(heartbeats) == 0 {
			continue
		}

		latest := heartbeats[len(heartbeats)-1]
		status := 1
		if latest.Status != nil {
			status = *latest.Status
		}
		monitorName := latest.Name
		if monitorName == "" {
			monitorName = "Monitor " + monitorID
		}

		previous, known := s.lastStates[monitorID]
		if known && status != previous {
			stateLabel := "DOWN"
			if status == 1 {
				stateLabel = "UP"
			}
			description := latest.Msg
			if description == "" {
				description = "Monitor transitioned to " + stateLabel
			}
			events = append(events, models.RawEvent{
				Title:       fmt.Sprintf("%s is %s", monitorName, stateLabel),
				Description: description,
				URL:         s.baseURL,
				SourceName:  s.name,
				SourceKind:  models.KindMonitor,
				Payload: map[string]interface{}{
					"monitor_id": monitorID,
					"status":     status,
				},
			})
		}

		// Baseline is always updated, even when nothing is emitted.
		s.lastStates[monitorID] = status
	}

	return events
}
