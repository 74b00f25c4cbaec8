// Package scheduler runs one independent polling loop per pull-based source.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
	"github.com/soulkill3r/pythia/internal/source"
)

// Processor is the pipeline capability the scheduler feeds raw events into.
// Satisfied by *pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, raw models.RawEvent) bool
}

// Scheduler owns the polling loops for all pull-based sources. Each source
// runs in its own goroutine; a failing or slow source never delays the
// others.
type Scheduler struct {
	mu        sync.Mutex
	processor Processor
	sources   []source.Source
	running   bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// New constructs a Scheduler over the given pull sources.
func New(processor Processor, sources []source.Source, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		processor: processor,
		sources:   sources,
		logger:    logger,
	}
}

// Start launches one polling goroutine per source.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	for _, src := range s.sources {
		s.wg.Add(1)
		go s.poll(ctx, src)
	}

	s.logger.Info("scheduler started", slog.Int("sources", len(s.sources)))
	return nil
}

// Stop signals all polling loops and waits for them to exit. In-flight
// fetch/classify work is abandoned at the next iteration boundary; events
// already published stay published.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler not running")
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

// poll is the per-source loop: fetch, classify, publish, sleep. Every
// failure inside one iteration is absorbed so the schedule always survives.
func (s *Scheduler) poll(ctx context.Context, src source.Source) {
	defer s.wg.Done()

	logger := s.logger.With(logging.Source(src.Name()))
	logger.Info("polling started", slog.Duration("interval", src.Interval()))

	ticker := time.NewTicker(src.Interval())
	defer ticker.Stop()

	// First poll runs immediately; the ticker paces the rest.
	s.iterate(ctx, src, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling cancelled")
			return
		case <-s.stopChan:
			logger.Info("polling stopped")
			return
		case <-ticker.C:
			s.iterate(ctx, src, logger)
		}
	}
}

func (s *Scheduler) iterate(ctx context.Context, src source.Source, logger *slog.Logger) {
	// A panicking source or classifier must not take down its own schedule,
	// let alone the process.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("recovered from panic in polling iteration",
				slog.Any("panic", r))
		}
	}()

	events := src.Fetch(ctx)
	if len(events) > 0 {
		metrics.EventsFetched.WithLabelValues(src.Name(), string(src.Kind())).Add(float64(len(events)))
	}

	for _, raw := range events {
		if ctx.Err() != nil {
			return
		}
		s.processor.Process(ctx, raw)
	}
}
