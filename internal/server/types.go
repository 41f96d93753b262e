// Package server exposes the grading pipeline over HTTP: multipart image
// and PDF uploads, a retrievable result store, a WebSocket streaming
// endpoint and Prometheus metrics.
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
)

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	APIKey          string
	RateLimitPerMin int
	ResultTTL       time.Duration
	PipelineConfig  pipeline.Config
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    *pipeline.Pipeline
	baseConfig  pipeline.Config
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	apiKey      string
	rateLimiter *RateLimiter
	results     *ResultStore
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// GradeResponse wraps a grading outcome or error for JSON endpoints.
type GradeResponse struct {
	Success  bool             `json:"success"`
	ResultID string           `json:"result_id,omitempty"`
	Result   *pipeline.Result `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// PDFPageResponse is the per-page payload of a PDF grading response.
type PDFPageResponse struct {
	Page   int              `json:"page"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// PDFGradeResponse is the /omr/pdf payload.
type PDFGradeResponse struct {
	Success bool              `json:"success"`
	Pages   []PDFPageResponse `json:"pages,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// NewServer creates a grading server from the given configuration.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, err
	}

	var limiter *RateLimiter
	if config.RateLimitPerMin > 0 {
		limiter = NewRateLimiter(config.RateLimitPerMin)
	}

	ttl := config.ResultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Server{
		pipeline:    pl,
		baseConfig:  config.PipelineConfig,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		apiKey:      config.APIKey,
		rateLimiter: limiter,
		results:     NewResultStore(ttl),
	}, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.results != nil {
		s.results.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/omr/image", s.corsMiddleware(s.rateLimitMiddleware(s.apiKeyMiddleware(s.gradeImageHandler))))
	mux.HandleFunc("/omr/results/", s.corsMiddleware(s.apiKeyMiddleware(s.getResultHandler)))
	mux.HandleFunc("/omr/pdf", s.corsMiddleware(s.rateLimitMiddleware(s.apiKeyMiddleware(s.gradePDFHandler))))
	mux.HandleFunc("/omr/stream", s.rateLimitMiddleware(s.apiKeyMiddleware(s.gradeStreamHandler)))
	mux.Handle("/metrics", promhttp.Handler())
}

// pipelineForRequest returns the base pipeline, or builds a fresh one when
// the request overrides sheet parameters.
func (s *Server) pipelineForRequest(overrides sheetOverrides) (*pipeline.Pipeline, error) {
	if overrides.empty() {
		return s.pipeline, nil
	}
	cfg := s.baseConfig
	if overrides.numQuestions > 0 {
		cfg.NumQuestions = overrides.numQuestions
	}
	if overrides.numOptions > 0 {
		cfg.NumOptions = overrides.numOptions
	}
	if overrides.minPixelThreshold >= 0 {
		cfg.MinPixelThreshold = overrides.minPixelThreshold
	}
	return pipeline.NewBuilder().WithConfig(cfg).Build()
}

// sheetOverrides carries per-request sheet parameters. A negative
// minPixelThreshold means "not set"; zero is a valid threshold.
type sheetOverrides struct {
	numQuestions      int
	numOptions        int
	minPixelThreshold int
}

func (o sheetOverrides) empty() bool {
	return o.numQuestions <= 0 && o.numOptions <= 0 && o.minPixelThreshold < 0
}
