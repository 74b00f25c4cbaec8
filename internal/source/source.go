// Package source implements the pull and push event sources feeding the
// pipeline.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/models"
)

// defaultInterval is the poll interval applied when a source config does not
// set one.
const defaultInterval = 300 * time.Second

// Source produces raw events. Fetch must not fail: transport and parse
// errors are absorbed internally and yield an empty slice, so one bad poll
// never stalls the source's schedule.
type Source interface {
	// Fetch pulls new events. Push-based sources return an empty slice.
	Fetch(ctx context.Context) []models.RawEvent

	// Name returns the configured display name.
	Name() string

	// Kind returns the source variant.
	Kind() models.SourceKind

	// Interval returns the poll interval for pull-based sources.
	Interval() time.Duration
}

// New constructs a source from its configuration. An unknown type is a
// configuration error and fatal at startup.
func New(cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "feed":
		return newFeedSource(cfg)
	case "monitor":
		return newMonitorSource(cfg)
	case "webhook":
		return newWebhookSource(cfg)
	default:
		return nil, fmt.Errorf("unknown source type: %q", cfg.Type)
	}
}

// interval converts the configured per-source interval in seconds, applying
// the default when unset.
func interval(cfg config.SourceConfig) time.Duration {
	if cfg.Interval <= 0 {
		return defaultInterval
	}
	return time.Duration(cfg.Interval) * time.Second
}
