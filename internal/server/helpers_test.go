package server

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/testutil"
)

// testPipelineConfig matches the synthetic sheets rendered by testutil.
func testPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.NumQuestions = 2
	cfg.NumOptions = 2
	cfg.MinPixelThreshold = 100
	cfg.Bubbles.MinSize = 10
	return cfg
}

// newTestServer creates a server suitable for handler tests: no API key,
// no rate limit.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		TimeoutSec:     30,
		ResultTTL:      time.Minute,
		PipelineConfig: testPipelineConfig(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// sheetPNG renders a 2x2 synthetic sheet and encodes it as PNG.
func sheetPNG(t *testing.T, filled map[int]int) []byte {
	t.Helper()
	spec := testutil.DefaultSheetSpec(2, 2)
	spec.Filled = filled
	return testutil.EncodePNG(t, testutil.RenderSheet(spec))
}

// uniformPNG encodes a featureless dark image: decodable, but with no
// sheet outline to locate.
func uniformPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{40, 40, 40, 255}), image.Point{}, draw.Src)
	return testutil.EncodePNG(t, img)
}

// multipartUpload builds a multipart request body with one file field and
// optional extra form fields.
func multipartUpload(t *testing.T, field, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// postImage runs a multipart POST against the image grading handler.
func postImage(t *testing.T, srv *Server, field, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, field, filename, data, fields)
	req := httptest.NewRequest(http.MethodPost, "/omr/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.gradeImageHandler(rec, req)
	return rec
}
