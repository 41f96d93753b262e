package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gomr_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gomr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Grading metrics
	gradeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gomr_grade_requests_total",
			Help: "Total number of grading requests",
		},
		[]string{"type", "status"}, // type: image, pdf, websocket
	)

	gradeProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gomr_grade_processing_duration_seconds",
			Help:    "Sheet grading duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	questionsScored = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gomr_questions_scored",
			Help:    "Number of questions scored per sheet",
			Buckets: []float64{0, 5, 10, 20, 50, 100, 200},
		},
		[]string{"type"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gomr_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gomr_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// Result store metrics
	storedResults = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gomr_stored_results",
			Help: "Number of grading results currently retained",
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gomr_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gomr_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
