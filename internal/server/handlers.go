package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/gomr/internal/pipeline"
	"github.com/MeKo-Tech/gomr/internal/rectify"
	"github.com/MeKo-Tech/gomr/internal/sheet"
	"github.com/MeKo-Tech/gomr/internal/utils"
	"github.com/MeKo-Tech/gomr/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}

// gradeImageHandler grades one uploaded sheet image.
func (s *Server) gradeImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if isBodyTooLarge(err) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(imageData)))

	if _, ok := SniffImageFormat(imageData); !ok {
		s.writeErrorResponse(w, "Unsupported file type: expected JPEG, PNG or BMP", http.StatusBadRequest)
		return
	}

	overrides, err := parseSheetOverrides(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	pl, err := s.pipelineForRequest(overrides)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Invalid sheet parameters: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := pl.ProcessBytesContext(r.Context(), imageData)
	duration := time.Since(start)

	if err != nil {
		gradeRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeGradeError(w, err)
		return
	}

	gradeRequestsTotal.WithLabelValues("image", "success").Inc()
	gradeProcessingDuration.WithLabelValues("image").Observe(duration.Seconds())
	questionsScored.WithLabelValues("image").Observe(float64(res.Diagnostics.QuestionsScored))

	resultID := s.results.Put(res)

	format := requestFormat(r)
	switch format {
	case "csv":
		out, err := pipeline.ToCSV(res)
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(out))
	case "text", "txt":
		out, err := pipeline.ToPlainText(res)
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(out))
	default:
		w.Header().Set("Content-Type", "application/json")
		response := GradeResponse{Success: true, ResultID: resultID, Result: res}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("failed to encode grade response", "error", err)
		}
	}
}

// getResultHandler retrieves a stored grading result by id.
func (s *Server) getResultHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/omr/results/")
	if id == "" || strings.Contains(id, "/") {
		s.writeErrorResponse(w, "Invalid result id", http.StatusBadRequest)
		return
	}

	res, ok := s.results.Get(id)
	if !ok {
		s.writeErrorResponse(w, "Result not found or expired", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	response := GradeResponse{Success: true, ResultID: id, Result: res}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode stored result", "error", err)
	}
}

// parseSheetOverrides reads optional sheet parameters from form or query
// values.
func parseSheetOverrides(r *http.Request) (sheetOverrides, error) {
	overrides := sheetOverrides{minPixelThreshold: -1}

	var err error
	if overrides.numQuestions, err = formIntValue(r, "num_questions", 0); err != nil {
		return overrides, err
	}
	if overrides.numOptions, err = formIntValue(r, "num_options", 0); err != nil {
		return overrides, err
	}
	if overrides.minPixelThreshold, err = formIntValue(r, "min_pixel_threshold", -1); err != nil {
		return overrides, err
	}
	return overrides, nil
}

func formIntValue(r *http.Request, name string, fallback int) (int, error) {
	val := r.FormValue(name)
	if val == "" {
		val = r.URL.Query().Get(name)
	}
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %q", name, val)
	}
	return n, nil
}

// requestFormat reads the output format from form or query, defaulting to
// json.
func requestFormat(r *http.Request) string {
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	return strings.ToLower(format)
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "request body too large")
}

// writeGradeError maps pipeline errors to HTTP status codes. Malformed
// uploads are client errors; images where no sheet geometry can be
// recovered are unprocessable rather than server faults.
func (s *Server) writeGradeError(w http.ResponseWriter, err error) {
	var decodeErr *utils.DecodeError
	var notFoundErr *sheet.NotFoundError
	var geomErr *rectify.DegenerateGeometryError

	switch {
	case errors.As(err, &decodeErr):
		s.writeErrorResponse(w, fmt.Sprintf("Invalid image: %v", err), http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		s.writeErrorResponse(w, fmt.Sprintf("No answer sheet detected: %v", err), http.StatusUnprocessableEntity)
	case errors.As(err, &geomErr):
		s.writeErrorResponse(w, fmt.Sprintf("Sheet geometry unusable: %v", err), http.StatusUnprocessableEntity)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, "Request cancelled", statusClientClosedRequest)
	default:
		s.writeErrorResponse(w, fmt.Sprintf("Grading failed: %v", err), http.StatusInternalServerError)
	}
}

// statusClientClosedRequest mirrors nginx's non-standard 499 for requests
// abandoned by the client.
const statusClientClosedRequest = 499

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := GradeResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
