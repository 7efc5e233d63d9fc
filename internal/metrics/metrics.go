package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the voice expense pipeline.
type Metrics struct {
	// Transcription sessions
	SessionsStarted   prometheus.Counter
	SessionsSucceeded prometheus.Counter
	SessionsFailed    *prometheus.CounterVec
	SessionDuration   prometheus.Histogram
	FramesSent        prometheus.Counter
	TranscriptRunes   prometheus.Histogram

	// Extraction outcomes
	ExtractionAmountHits   prometheus.Counter
	ExtractionCategoryHits prometheus.Counter
	ExtractionMethodHits   prometheus.Counter

	// Itinerary generation
	ItineraryRequests prometheus.Counter
	ItineraryRetries  prometheus.Counter
	ItineraryFailures prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_transcription_sessions_started_total",
			Help: "Total number of streaming transcription sessions opened",
		}),
		SessionsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_transcription_sessions_succeeded_total",
			Help: "Total number of sessions resolved with a final transcript",
		}),
		SessionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lvji_transcription_sessions_failed_total",
			Help: "Total number of failed sessions by failure code",
		}, []string{"code"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lvji_transcription_session_duration_seconds",
			Help:    "Wall-clock duration of transcription sessions",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		FramesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_transcription_frames_sent_total",
			Help: "Total number of audio frames sent to the recognizer",
		}),
		TranscriptRunes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lvji_transcript_length_runes",
			Help:    "Length of final transcripts in runes",
			Buckets: prometheus.ExponentialBuckets(4, 2, 8),
		}),
		ExtractionAmountHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_extraction_amount_hits_total",
			Help: "Transcripts from which an amount was extracted",
		}),
		ExtractionCategoryHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_extraction_category_hits_total",
			Help: "Transcripts from which a category was extracted",
		}),
		ExtractionMethodHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_extraction_method_hits_total",
			Help: "Transcripts from which a payment method was extracted",
		}),
		ItineraryRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_itinerary_requests_total",
			Help: "Total itinerary generation requests",
		}),
		ItineraryRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_itinerary_retries_total",
			Help: "Itinerary generation retries after format failures",
		}),
		ItineraryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lvji_itinerary_failures_total",
			Help: "Itinerary generation requests that exhausted all attempts",
		}),
	}
}
