// Package models defines the event types flowing through the pipeline.
package models

// SourceKind identifies the variant of source an event originated from.
type SourceKind string

const (
	KindFeed    SourceKind = "feed"
	KindMonitor SourceKind = "monitor"
	KindWebhook SourceKind = "webhook"
)

// Severity categories returned by the classifier. The numeric bands are part
// of the classification prompt; see CategoryForCriticality.
const (
	CategoryNominal      = "NOMINAL"
	CategoryElevated     = "ELEVATED SCRUTINY"
	CategoryDivergence   = "DIVERGENCE"
	CategoryIntervention = "INTERVENTION IN PROGRESS"
	CategoryCritical     = "CRITICAL DIVERGENCE"
)

// RawEvent is an unclassified event as produced by a source. Immutable once
// constructed; consumed by the classifier and then discarded.
type RawEvent struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	URL         string                 `json:"url,omitempty"`
	SourceName  string                 `json:"source_name"`
	SourceKind  SourceKind             `json:"source_kind"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// EvaluatedEvent is a classified event as published to subscribers.
// Criticality is on a 1.0-10.0 scale; Category is taken from the model's
// verdict and is not re-derived from the criticality band.
type EvaluatedEvent struct {
	ID          string  `json:"id"`
	Criticality float64 `json:"criticality"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	Location    string  `json:"location,omitempty"`
	Source      string  `json:"source"`
	Timestamp   string  `json:"timestamp"`
	URL         string  `json:"url,omitempty"`
}

// CategoryForCriticality returns the category label the prompt schema maps a
// criticality to. Advisory: the classifier trusts the model's own category
// field, so published events may disagree with this mapping.
func CategoryForCriticality(c float64) string {
	switch {
	case c < 4:
		return CategoryNominal
	case c < 6:
		return CategoryElevated
	case c < 8:
		return CategoryDivergence
	case c < 10:
		return CategoryIntervention
	default:
		return CategoryCritical
	}
}
