package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerInvalidPipelineConfig(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.NumQuestions = 0
	_, err := NewServer(Config{PipelineConfig: cfg})
	require.Error(t, err)
}

func TestSetupRoutesServesHealth(t *testing.T) {
	srv := newTestServer(t)

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutesServesMetrics(t *testing.T) {
	srv := newTestServer(t)

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPipelineForRequestReusesBasePipeline(t *testing.T) {
	srv := newTestServer(t)

	pl, err := srv.pipelineForRequest(sheetOverrides{minPixelThreshold: -1})
	require.NoError(t, err)
	assert.Same(t, srv.pipeline, pl)
}

func TestPipelineForRequestAppliesOverrides(t *testing.T) {
	srv := newTestServer(t)

	pl, err := srv.pipelineForRequest(sheetOverrides{
		numQuestions:      7,
		numOptions:        3,
		minPixelThreshold: 250,
	})
	require.NoError(t, err)
	require.NotSame(t, srv.pipeline, pl)

	cfg := pl.Config()
	assert.Equal(t, 7, cfg.NumQuestions)
	assert.Equal(t, 3, cfg.NumOptions)
	assert.Equal(t, 250, cfg.MinPixelThreshold)
}

func TestPipelineForRequestRejectsInvalidOverrides(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.pipelineForRequest(sheetOverrides{numOptions: 1, minPixelThreshold: -1})
	require.Error(t, err)
}

func TestNewServerDefaultsResultTTL(t *testing.T) {
	srv, err := NewServer(Config{PipelineConfig: testPipelineConfig()})
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	assert.Equal(t, time.Hour, srv.results.ttl)
	assert.Nil(t, srv.rateLimiter)
}
