package source

import (
	"context"
	"time"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/models"
)

// webhookSource is push-based: events arrive via HTTP POST on the source's
// configured path, never by polling. Duplicate suppression and ordering are
// the sender's responsibility.
type webhookSource struct {
	name string
	path string
}

func newWebhookSource(cfg config.SourceConfig) (*webhookSource, error) {
	name := cfg.Name
	if name == "" {
		name = "Webhook"
	}
	path := cfg.Path
	if path == "" {
		path = "/webhook"
	}
	return &webhookSource{name: name, path: path}, nil
}

func (s *webhookSource) Name() string            { return s.name }
func (s *webhookSource) Kind() models.SourceKind { return models.KindWebhook }
func (s *webhookSource) Interval() time.Duration { return 0 }

// Path returns the HTTP path the push endpoint is mounted on.
func (s *webhookSource) Path() string { return s.path }

func (s *webhookSource) Fetch(ctx context.Context) []models.RawEvent {
	return nil
}
