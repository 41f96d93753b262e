package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are filtered by the CORS configuration on the REST
		// endpoints; the stream endpoint accepts any origin.
		return true
	},
}

// GradeStreamRequest is a grading request submitted over WebSocket. Image
// carries the raw upload, base64-encoded by JSON.
type GradeStreamRequest struct {
	Image             []byte `json:"image"`
	NumQuestions      int    `json:"num_questions,omitempty"`
	NumOptions        int    `json:"num_options,omitempty"`
	MinPixelThreshold int    `json:"min_pixel_threshold,omitempty"`
}

// GradeStreamResponse is a frame sent back over WebSocket while a request
// is graded.
type GradeStreamResponse struct {
	Type      string      `json:"type"`
	Status    string      `json:"status"` // "processing", "completed", "error"
	Stage     string      `json:"stage,omitempty"`
	Progress  float64     `json:"progress,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// streamConnWriter is the connection surface the senders need; tests
// substitute a recorder.
type streamConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// gradeStreamHandler handles WebSocket connections for streamed grading.
func (s *Server) gradeStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleStreamConnection(conn)
}

// handleStreamConnection processes messages from one WebSocket connection.
func (s *Server) handleStreamConnection(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Ping to keep the connection alive between requests.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleStreamMessage(conn, data)
		}
	}
}

// handleStreamMessage grades one streamed request, emitting progress frames
// along the way.
func (s *Server) handleStreamMessage(conn streamConnWriter, data []byte) {
	var req GradeStreamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendStreamError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	if len(req.Image) == 0 {
		s.sendStreamError(conn, "invalid_request", "No image data provided")
		return
	}

	s.sendStreamResponse(conn, GradeStreamResponse{
		Type:      "grade_response",
		Status:    "processing",
		Stage:     "received",
		Progress:  0.0,
		RequestID: requestID,
	})

	if _, ok := SniffImageFormat(req.Image); !ok {
		s.sendStreamError(conn, "invalid_request", "Unsupported file type: expected JPEG, PNG or BMP")
		return
	}

	overrides := sheetOverrides{
		numQuestions:      req.NumQuestions,
		numOptions:        req.NumOptions,
		minPixelThreshold: -1,
	}
	if req.MinPixelThreshold > 0 {
		overrides.minPixelThreshold = req.MinPixelThreshold
	}

	pl, err := s.pipelineForRequest(overrides)
	if err != nil {
		s.sendStreamError(conn, "invalid_request", fmt.Sprintf("Invalid sheet parameters: %v", err))
		return
	}

	s.sendStreamResponse(conn, GradeStreamResponse{
		Type:      "grade_response",
		Status:    "processing",
		Stage:     "grading",
		Progress:  0.5,
		RequestID: requestID,
	})

	start := time.Now()
	res, err := pl.ProcessBytes(req.Image)
	duration := time.Since(start)

	if err != nil {
		gradeRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendStreamError(conn, "processing_error", fmt.Sprintf("Grading failed: %v", err))
		return
	}

	gradeRequestsTotal.WithLabelValues("websocket", "success").Inc()
	gradeProcessingDuration.WithLabelValues("websocket").Observe(duration.Seconds())
	questionsScored.WithLabelValues("websocket").Observe(float64(res.Diagnostics.QuestionsScored))

	s.sendStreamResponse(conn, GradeStreamResponse{
		Type:      "grade_response",
		Status:    "completed",
		Stage:     "done",
		Progress:  1.0,
		Result:    res,
		RequestID: requestID,
	})
}

// sendStreamResponse sends a response frame over the connection.
func (s *Server) sendStreamResponse(conn streamConnWriter, response GradeStreamResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendStreamError sends an error frame over the connection.
func (s *Server) sendStreamError(conn streamConnWriter, errorType, message string) {
	s.sendStreamResponse(conn, GradeStreamResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}
