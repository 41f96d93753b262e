package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/gomr/internal/pdf"
)

// gradePDFHandler grades answer sheets embedded in an uploaded PDF.
// pdfcpu extracts from files on disk, so the upload is spooled to a
// temporary file first.
func (s *Server) gradePDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		if isBodyTooLarge(err) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	tempPath, err := spoolUpload(file)
	if err != nil {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.Remove(tempPath) }()

	overrides, err := parseSheetOverrides(r)
	if err != nil {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	pl, err := s.pipelineForRequest(overrides)
	if err != nil {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Invalid sheet parameters: %v", err), http.StatusBadRequest)
		return
	}

	pageRange := r.FormValue("pages")

	start := time.Now()
	pages, err := pdf.GradePDF(r.Context(), pl, tempPath, pageRange)
	duration := time.Since(start)

	if err != nil {
		gradeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("PDF grading failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	gradeRequestsTotal.WithLabelValues("pdf", "success").Inc()
	gradeProcessingDuration.WithLabelValues("pdf").Observe(duration.Seconds())

	response := PDFGradeResponse{Success: true, Pages: make([]PDFPageResponse, 0, len(pages))}
	for _, p := range pages {
		pageResp := PDFPageResponse{Page: p.Page, Result: p.Result}
		if p.Err != nil {
			pageResp.Error = p.Err.Error()
		}
		response.Pages = append(response.Pages, pageResp)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode PDF grade response", "error", err)
	}
}

// spoolUpload writes an uploaded file to a private temp file and returns
// its path. The caller removes the file when done.
func spoolUpload(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "gomr-upload-*.pdf")
	if err != nil {
		return "", err
	}
	path := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return filepath.Clean(path), nil
}
