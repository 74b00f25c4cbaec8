// Package pipeline runs raw events through classification, threshold
// filtering and publication. It is the shared path between the scheduler's
// polling loops and the inbound webhook handlers.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
)

// Evaluator is the classification capability the pipeline depends on.
// Satisfied by *classifier.Classifier.
type Evaluator interface {
	Evaluate(ctx context.Context, event models.RawEvent, retries int) (*models.EvaluatedEvent, error)
}

// Publisher receives accepted events. Satisfied by *hub.Hub.
type Publisher interface {
	Publish(event models.EvaluatedEvent)
}

// Forwarder optionally mirrors accepted events to an external system.
type Forwarder interface {
	Forward(ctx context.Context, event models.EvaluatedEvent) error
}

// Pipeline wires the classifier, the threshold filter and the hub together.
type Pipeline struct {
	evaluator Evaluator
	publisher Publisher
	forwarder Forwarder
	threshold float64
	retries   int
	logger    *slog.Logger
}

// Config configures a Pipeline.
type Config struct {
	// CriticalityThreshold drops evaluated events scoring below it.
	CriticalityThreshold float64

	// ClassifyRetries is the extra attempts the classifier may spend per
	// event.
	ClassifyRetries int
}

// New constructs a Pipeline. forwarder may be nil.
func New(evaluator Evaluator, publisher Publisher, forwarder Forwarder, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		evaluator: evaluator,
		publisher: publisher,
		forwarder: forwarder,
		threshold: cfg.CriticalityThreshold,
		retries:   cfg.ClassifyRetries,
		logger:    logger,
	}
}

// Process classifies one raw event and publishes it if accepted. Returns
// true when the event was published. Classification failures and
// below-threshold verdicts are absorbed here; they never propagate to the
// calling loop.
func (p *Pipeline) Process(ctx context.Context, raw models.RawEvent) bool {
	evaluated, err := p.evaluator.Evaluate(ctx, raw, p.retries)
	if err != nil {
		// Already logged with attempt detail by the classifier.
		return false
	}

	if evaluated.Criticality < p.threshold {
		p.logger.Debug("event below threshold",
			logging.Criticality(evaluated.Criticality),
			slog.Float64("threshold", p.threshold),
			logging.Title(evaluated.Title),
		)
		metrics.EventsBelowThreshold.Inc()
		return false
	}

	p.logger.Info("event accepted",
		logging.Source(raw.SourceName),
		logging.Criticality(evaluated.Criticality),
		logging.Category(evaluated.Category),
		logging.Title(evaluated.Title),
	)
	metrics.EventsPublished.WithLabelValues(raw.SourceName, evaluated.Category).Inc()

	p.publisher.Publish(*evaluated)

	if p.forwarder != nil {
		if err := p.forwarder.Forward(ctx, *evaluated); err != nil {
			p.logger.Warn("event forwarding failed",
				logging.EventID(evaluated.ID),
				logging.Error(err),
			)
		}
	}

	return true
}
