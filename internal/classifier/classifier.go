// Package classifier turns raw events into evaluated events by driving a
// streaming completion request and parsing a JSON verdict out of the
// possibly noisy model response.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soulkill3r/pythia/internal/llm"
	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
)

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	jsonSpanRe   = regexp.MustCompile(`(?s)\{.*\}`)
)

// CompletionClient is the streaming completion capability the classifier
// depends on. Satisfied by *llm.Client.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Options configures a Classifier.
type Options struct {
	Model     string
	Language  string
	MaxTokens int
	NumCtx    int
}

// Classifier evaluates raw events against an LLM backend.
type Classifier struct {
	client CompletionClient
	opts   Options
	logger *slog.Logger
}

// New constructs a Classifier.
func New(client CompletionClient, opts Options, logger *slog.Logger) *Classifier {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 512
	}
	if opts.NumCtx == 0 {
		opts.NumCtx = 2048
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, opts: opts, logger: logger}
}

// verdict is the JSON shape expected from the model. Criticality and
// Category are required; the rest fall back to fields of the raw event.
type verdict struct {
	Criticality *float64 `json:"criticality"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Location    string   `json:"location"`
	Source      string   `json:"source"`
	Timestamp   string   `json:"timestamp"`
}

// ErrNoVerdict is returned when the retry budget is exhausted without a
// usable verdict. Callers skip the event; it is never fatal to a loop.
var ErrNoVerdict = errors.New("no verdict after all attempts")

// Evaluate classifies one raw event. On any failure (network, timeout,
// malformed response) the whole request is retried up to retries additional
// times; when every attempt fails it returns ErrNoVerdict so callers can
// skip the event without stopping their loop.
func (c *Classifier) Evaluate(ctx context.Context, event models.RawEvent, retries int) (*models.EvaluatedEvent, error) {
	req := llm.Request{
		Model: c.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt(c.opts.Language)},
			{Role: "user", Content: userContent(event)},
		},
		Temperature:  0.1,
		MaxTokens:    c.opts.MaxTokens,
		NumCtx:       c.opts.NumCtx,
		DisableThink: true,
	}

	for attempt := 0; attempt <= retries; attempt++ {
		metrics.ClassifyAttempts.Inc()
		start := time.Now()

		evaluated, err := c.attempt(ctx, req, event)
		if err == nil {
			metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
			return evaluated, nil
		}

		c.logger.Warn("evaluation attempt failed",
			logging.Attempt(attempt+1),
			slog.Int("max_attempts", retries+1),
			logging.Source(event.SourceName),
			logging.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	metrics.ClassifyFailures.Inc()
	c.logger.Error("all evaluation attempts failed",
		logging.Source(event.SourceName),
		logging.Title(event.Title),
	)
	return nil, ErrNoVerdict
}

func (c *Classifier) attempt(ctx context.Context, req llm.Request, event models.RawEvent) (*models.EvaluatedEvent, error) {
	raw, err := c.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	v, err := extractVerdict(raw)
	if err != nil {
		return nil, err
	}

	if v.Criticality == nil {
		return nil, fmt.Errorf("verdict missing criticality")
	}
	if v.Category == "" {
		return nil, fmt.Errorf("verdict missing category")
	}

	evaluated := &models.EvaluatedEvent{
		ID:          uuid.New().String(),
		Criticality: *v.Criticality,
		Category:    v.Category,
		Title:       v.Title,
		Summary:     v.Summary,
		Location:    v.Location,
		Source:      v.Source,
		Timestamp:   v.Timestamp,
		URL:         event.URL,
	}
	if evaluated.Title == "" {
		evaluated.Title = event.Title
	}
	if evaluated.Source == "" {
		evaluated.Source = event.SourceName
	}
	if evaluated.Timestamp == "" {
		evaluated.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	return evaluated, nil
}

// userContent summarizes the raw event for the model.
func userContent(event models.RawEvent) string {
	description := event.Description
	if description == "" {
		description = "N/A"
	}
	return fmt.Sprintf("Title: %s\nSource: %s\nDescription: %s",
		event.Title, event.SourceName, description)
}

// stripThinking removes <think>...</think> blocks emitted by reasoning
// models (e.g. Qwen3) before any JSON parsing.
func stripThinking(text string) string {
	return strings.TrimSpace(thinkBlockRe.ReplaceAllString(text, ""))
}

// extractVerdict parses a verdict from the model response: direct JSON parse
// first, then the first {...} span of the cleaned text.
func extractVerdict(text string) (*verdict, error) {
	cleaned := stripThinking(text)

	var v verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return &v, nil
	}

	if span := jsonSpanRe.FindString(cleaned); span != "" {
		if err := json.Unmarshal([]byte(span), &v); err == nil {
			return &v, nil
		}
	}

	snippet := cleaned
	if len(snippet) > 300 {
		snippet = snippet[:300]
	}
	return nil, fmt.Errorf("no valid JSON found in model response: %q", snippet)
}
