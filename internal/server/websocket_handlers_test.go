package server

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConn captures frames written during a streamed grading request.
type recordingConn struct {
	frames []GradeStreamResponse
}

func (c *recordingConn) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	var frame GradeStreamResponse
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	c.frames = append(c.frames, frame)
	return nil
}

func streamRequest(t *testing.T, req GradeStreamRequest) []byte {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return data
}

func TestHandleStreamMessageGradesSheet(t *testing.T) {
	srv := newTestServer(t)
	conn := &recordingConn{}

	srv.handleStreamMessage(conn, streamRequest(t, GradeStreamRequest{
		Image: sheetPNG(t, map[int]int{1: 0, 2: 1}),
	}))

	require.Len(t, conn.frames, 3)

	assert.Equal(t, "processing", conn.frames[0].Status)
	assert.Equal(t, "received", conn.frames[0].Stage)
	assert.NotEmpty(t, conn.frames[0].RequestID)

	assert.Equal(t, "processing", conn.frames[1].Status)
	assert.Equal(t, "grading", conn.frames[1].Stage)
	assert.Equal(t, conn.frames[0].RequestID, conn.frames[1].RequestID)

	final := conn.frames[2]
	assert.Equal(t, "completed", final.Status)
	assert.InDelta(t, 1.0, final.Progress, 1e-9)
	require.NotNil(t, final.Result)

	// Result travels as generic JSON; spot-check the answer map.
	resultJSON, err := json.Marshal(final.Result)
	require.NoError(t, err)
	assert.Contains(t, string(resultJSON), `"1":"A"`)
	assert.Contains(t, string(resultJSON), `"2":"B"`)
}

func TestHandleStreamMessageInvalidJSON(t *testing.T) {
	srv := newTestServer(t)
	conn := &recordingConn{}

	srv.handleStreamMessage(conn, []byte("{not json"))

	require.Len(t, conn.frames, 1)
	assert.Equal(t, "error", conn.frames[0].Status)
	assert.Equal(t, "invalid_request", conn.frames[0].ErrorType)
}

func TestHandleStreamMessageNoImage(t *testing.T) {
	srv := newTestServer(t)
	conn := &recordingConn{}

	srv.handleStreamMessage(conn, streamRequest(t, GradeStreamRequest{}))

	require.Len(t, conn.frames, 1)
	assert.Equal(t, "error", conn.frames[0].Status)
	assert.Contains(t, conn.frames[0].Error, "No image data")
}

func TestHandleStreamMessageNonImagePayload(t *testing.T) {
	srv := newTestServer(t)
	conn := &recordingConn{}

	srv.handleStreamMessage(conn, streamRequest(t, GradeStreamRequest{
		Image: []byte("plain text payload"),
	}))

	require.NotEmpty(t, conn.frames)
	last := conn.frames[len(conn.frames)-1]
	assert.Equal(t, "error", last.Status)
	assert.Contains(t, last.Error, "Unsupported file type")
}

func TestHandleStreamMessageGradingError(t *testing.T) {
	srv := newTestServer(t)
	conn := &recordingConn{}

	srv.handleStreamMessage(conn, streamRequest(t, GradeStreamRequest{
		Image: uniformPNG(t),
	}))

	require.NotEmpty(t, conn.frames)
	last := conn.frames[len(conn.frames)-1]
	assert.Equal(t, "error", last.Status)
	assert.Equal(t, "processing_error", last.ErrorType)
}

func TestHandleStreamMessageParameterOverrides(t *testing.T) {
	srv := newTestServer(t)
	conn := &recordingConn{}

	srv.handleStreamMessage(conn, streamRequest(t, GradeStreamRequest{
		Image:        sheetPNG(t, nil),
		NumQuestions: 5,
	}))

	final := conn.frames[len(conn.frames)-1]
	require.Equal(t, "completed", final.Status)

	resultJSON, err := json.Marshal(final.Result)
	require.NoError(t, err)
	assert.Contains(t, string(resultJSON), `"questions_requested":5`)
}
