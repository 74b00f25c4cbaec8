package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soulkill3r/pythia/internal/classifier"
	"github.com/soulkill3r/pythia/internal/models"
)

type mockEvaluator struct {
	result *models.EvaluatedEvent
	err    error
	calls  int
}

func (m *mockEvaluator) Evaluate(ctx context.Context, event models.RawEvent, retries int) (*models.EvaluatedEvent, error) {
	m.calls++
	return m.result, m.err
}

type mockPublisher struct {
	published []models.EvaluatedEvent
}

func (m *mockPublisher) Publish(event models.EvaluatedEvent) {
	m.published = append(m.published, event)
}

type mockForwarder struct {
	forwarded []models.EvaluatedEvent
	err       error
}

func (m *mockForwarder) Forward(ctx context.Context, event models.EvaluatedEvent) error {
	m.forwarded = append(m.forwarded, event)
	return m.err
}

func rawEvent() models.RawEvent {
	return models.RawEvent{
		Title:      "Something happened",
		SourceName: "test",
		SourceKind: models.KindFeed,
	}
}

func evaluated(criticality float64) *models.EvaluatedEvent {
	return &models.EvaluatedEvent{
		ID:          "evt-1",
		Criticality: criticality,
		Category:    models.CategoryDivergence,
		Title:       "Something happened",
		Summary:     "s",
		Source:      "test",
		Timestamp:   "2025-01-01T00:00:00Z",
	}
}

func TestProcess_PublishesAcceptedEvent(t *testing.T) {
	eval := &mockEvaluator{result: evaluated(6.5)}
	pub := &mockPublisher{}
	p := New(eval, pub, nil, Config{CriticalityThreshold: 1.0, ClassifyRetries: 2}, nil)

	accepted := p.Process(context.Background(), rawEvent())
	assert.True(t, accepted)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "evt-1", pub.published[0].ID)
}

func TestProcess_DropsBelowThreshold(t *testing.T) {
	eval := &mockEvaluator{result: evaluated(2.0)}
	pub := &mockPublisher{}
	p := New(eval, pub, nil, Config{CriticalityThreshold: 4.0}, nil)

	accepted := p.Process(context.Background(), rawEvent())
	assert.False(t, accepted)
	assert.Empty(t, pub.published)
}

func TestProcess_AbsorbsClassifierFailure(t *testing.T) {
	eval := &mockEvaluator{err: classifier.ErrNoVerdict}
	pub := &mockPublisher{}
	p := New(eval, pub, nil, Config{}, nil)

	accepted := p.Process(context.Background(), rawEvent())
	assert.False(t, accepted)
	assert.Empty(t, pub.published)
}

func TestProcess_ForwardsAcceptedEvent(t *testing.T) {
	eval := &mockEvaluator{result: evaluated(6.5)}
	pub := &mockPublisher{}
	fwd := &mockForwarder{}
	p := New(eval, pub, fwd, Config{CriticalityThreshold: 1.0}, nil)

	p.Process(context.Background(), rawEvent())
	require.Len(t, fwd.forwarded, 1)
	assert.Equal(t, "evt-1", fwd.forwarded[0].ID)
}

func TestProcess_ForwarderFailureDoesNotBlockPublish(t *testing.T) {
	eval := &mockEvaluator{result: evaluated(6.5)}
	pub := &mockPublisher{}
	fwd := &mockForwarder{err: assert.AnError}
	p := New(eval, pub, fwd, Config{CriticalityThreshold: 1.0}, nil)

	accepted := p.Process(context.Background(), rawEvent())
	assert.True(t, accepted)
	assert.Len(t, pub.published, 1)
}

func TestProcess_ThresholdBoundaryIsInclusive(t *testing.T) {
	eval := &mockEvaluator{result: evaluated(4.0)}
	pub := &mockPublisher{}
	p := New(eval, pub, nil, Config{CriticalityThreshold: 4.0}, nil)

	accepted := p.Process(context.Background(), rawEvent())
	assert.True(t, accepted, "criticality equal to the threshold is accepted")
}
