package source

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/soulkill3r/pythia/internal/config"
	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
)

const (
	// maxEntriesPerPoll caps events emitted per poll so a long outage does
	// not flood the classifier; the remainder is picked up next poll.
	maxEntriesPerPoll = 5

	// seenCap / seenTrim bound the dedup memory. Trimming keeps the most
	// recent seenTrim ids and sacrifices strict duplicate suppression for
	// bounded memory.
	seenCap  = 2000
	seenTrim = 1000
)

// feedSource polls a syndication feed (RSS, Atom, JSON Feed) and dedups
// entries across polls.
type feedSource struct {
	name     string
	url      string
	interval time.Duration
	parser   *gofeed.Parser

	seen      map[string]struct{}
	seenOrder []string
	logger    *slog.Logger
}

func newFeedSource(cfg config.SourceConfig) (*feedSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("feed source %q: url is required", cfg.Name)
	}
	name := cfg.Name
	if name == "" {
		name = "feed"
	}
	return &feedSource{
		name:     name,
		url:      cfg.URL,
		interval: interval(cfg),
		parser:   gofeed.NewParser(),
		seen:     make(map[string]struct{}),
		logger:   slog.Default().With(logging.Source(name)),
	}, nil
}

func (s *feedSource) Name() string            { return s.name }
func (s *feedSource) Kind() models.SourceKind { return models.KindFeed }
func (s *feedSource) Interval() time.Duration { return s.interval }

func (s *feedSource) Fetch(ctx context.Context) []models.RawEvent {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		s.logger.Error("feed fetch error", logging.Error(err))
		metrics.FetchErrors.WithLabelValues(s.name).Inc()
		return nil
	}

	var events []models.RawEvent
	for _, item := range feed.Items {
		if len(events) >= maxEntriesPerPoll {
			break
		}

		uid := entryID(item)
		if _, ok := s.seen[uid]; ok {
			continue
		}
		s.markSeen(uid)

		title := item.Title
		if title == "" {
			title = "Untitled"
		}

		events = append(events, models.RawEvent{
			Title:       title,
			Description: item.Description,
			URL:         item.Link,
			SourceName:  s.name,
			SourceKind:  models.KindFeed,
			Payload:     map[string]interface{}{"feed_title": feed.Title},
		})
	}

	return events
}

// entryID computes the dedup id for one entry: entry id, else link, else a
// hash of the title.
func entryID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.Link != "" {
		return item.Link
	}
	sum := md5.Sum([]byte(item.Title))
	return hex.EncodeToString(sum[:])
}

func (s *feedSource) markSeen(uid string) {
	s.seen[uid] = struct{}{}
	s.seenOrder = append(s.seenOrder, uid)

	if len(s.seenOrder) > seenCap {
		keep := s.seenOrder[len(s.seenOrder)-seenTrim:]
		seen := make(map[string]struct{}, len(keep))
		for _, id := range keep {
			seen[id] = struct{}{}
		}
		s.seen = seen
		s.seenOrder = append([]string(nil), keep...)
	}
}
