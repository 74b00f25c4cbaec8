package logging

import "log/slog"

// Common field names for consistent logging across the pipeline.
const (
	FieldSource      = "source"
	FieldSourceKind  = "source_kind"
	FieldEventID     = "event_id"
	FieldTitle       = "title"
	FieldCriticality = "criticality"
	FieldCategory    = "category"
	FieldAttempt     = "attempt"
	FieldError       = "error"
	FieldSubscribers = "subscribers"
)

// Source returns a slog attribute for the source name.
func Source(name string) slog.Attr {
	return slog.String(FieldSource, name)
}

// EventID returns a slog attribute for an event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// Title returns a slog attribute for an event title.
func Title(title string) slog.Attr {
	return slog.String(FieldTitle, title)
}

// Criticality returns a slog attribute for a criticality score.
func Criticality(c float64) slog.Attr {
	return slog.Float64(FieldCriticality, c)
}

// Category returns a slog attribute for a severity category.
func Category(c string) slog.Attr {
	return slog.String(FieldCategory, c)
}

// Attempt returns a slog attribute for a retry attempt index.
func Attempt(n int) slog.Attr {
	return slog.Int(FieldAttempt, n)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Subscribers returns a slog attribute for the live subscriber count.
func Subscribers(n int) slog.Attr {
	return slog.Int(FieldSubscribers, n)
}
