package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source polling metrics
	EventsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pythia_events_fetched_total",
			Help: "Total number of raw events produced by sources",
		},
		[]string{"source", "kind"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pythia_fetch_errors_total",
			Help: "Total number of source fetch failures absorbed",
		},
		[]string{"source"},
	)

	// Classification metrics
	ClassifyAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pythia_classify_attempts_total",
			Help: "Total number of classification attempts including retries",
		},
	)

	ClassifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pythia_classify_failures_total",
			Help: "Total number of events dropped after exhausting the retry budget",
		},
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pythia_classify_duration_seconds",
			Help:    "Duration of successful classification calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Pipeline metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pythia_events_published_total",
			Help: "Total number of evaluated events accepted and published",
		},
		[]string{"source", "category"},
	)

	EventsBelowThreshold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pythia_events_below_threshold_total",
			Help: "Total number of evaluated events dropped by the criticality threshold",
		},
	)

	// Hub metrics
	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pythia_subscribers",
			Help: "Current number of live subscriber connections",
		},
	)

	SubscriberSendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pythia_subscriber_send_errors_total",
			Help: "Total number of failed sends to subscribers",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pythia_rate_limit_hits_total",
			Help: "Total number of rate limit hits on webhook endpoints",
		},
		[]string{"source"},
	)
)
