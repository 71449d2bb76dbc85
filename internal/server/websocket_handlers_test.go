package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialFrames(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/frames"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	return conn
}

// roundTrip sends one request and returns the reply and its raw JSON.
func roundTrip(t *testing.T, conn *websocket.Conn, req any) (FrameReply, string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var reply FrameReply
	require.NoError(t, json.Unmarshal(data, &reply))
	return reply, string(data)
}

func TestFramesWebSocket_ScansFrames(t *testing.T) {
	engine := &stubEngine{detections: []barcode.Detection{qrDetection("ws-hello")}}
	conn := dialFrames(t, newTestServer(t, engine))

	reply, _ := roundTrip(t, conn, FrameRequest{ID: "f1", Image: pngBytes(t, 10, 10), Args: []any{[]int{256}}})
	assert.Equal(t, "f1", reply.ID)
	assert.Equal(t, replyOK, reply.Status)
	require.Len(t, reply.Records, 1)
	assert.Equal(t, "ws-hello", reply.Records[0].DisplayValue)
	assert.Equal(t, barcode.NewFormatSet(barcode.FormatQR), engine.lastBuilt())

	// frames on one connection are answered in order and can change formats
	reply, _ = roundTrip(t, conn, FrameRequest{ID: "f2", Image: pngBytes(t, 10, 10), Args: []any{[]int{32, 64}, map[string]any{"checkInverted": true}}})
	assert.Equal(t, "f2", reply.ID)
	assert.Equal(t, replyOK, reply.Status)
	assert.Equal(t, barcode.NewFormatSet(barcode.FormatEAN13, barcode.FormatEAN8), engine.lastBuilt())
}

func TestFramesWebSocket_DefaultArgs(t *testing.T) {
	engine := &stubEngine{}
	conn := dialFrames(t, newTestServer(t, engine, func(c *Config) {
		c.Formats = barcode.NewFormatSet(barcode.FormatAztec)
	}))

	reply, raw := roundTrip(t, conn, FrameRequest{ID: "d", Image: pngBytes(t, 6, 6)})
	assert.Equal(t, replyOK, reply.Status)
	assert.Contains(t, raw, `"records":[]`)
	assert.Equal(t, barcode.NewFormatSet(barcode.FormatAztec), engine.lastBuilt())
}

func TestFramesWebSocket_Errors(t *testing.T) {
	conn := dialFrames(t, newTestServer(t, &stubEngine{}))

	tests := []struct {
		name          string
		req           any
		expectedError string
	}{
		{
			name:          "empty format list",
			req:           FrameRequest{ID: "e1", Image: pngBytes(t, 4, 4), Args: []any{[]int{}}},
			expectedError: "no barcode format provided",
		},
		{
			name:          "non-list format argument",
			req:           map[string]any{"id": "e2", "image": pngBytes(t, 4, 4), "args": []any{"qr"}},
			expectedError: "expected a list of format codes",
		},
		{
			name:          "missing image",
			req:           FrameRequest{ID: "e3", Args: []any{[]int{0}}},
			expectedError: "empty image data",
		},
		{
			name:          "bad orientation",
			req:           FrameRequest{ID: "e4", Image: pngBytes(t, 4, 4), DeviceOrientation: "sideways"},
			expectedError: "unknown device orientation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, raw := roundTrip(t, conn, tt.req)
			assert.Equal(t, replyError, reply.Status)
			assert.Contains(t, reply.Error, tt.expectedError)
			assert.Contains(t, raw, `"records":null`)
		})
	}
}

func TestFramesWebSocket_InvalidJSON(t *testing.T) {
	conn := dialFrames(t, newTestServer(t, &stubEngine{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply FrameReply
	require.NoError(t, json.Unmarshal(data, &reply))
	assert.Equal(t, replyError, reply.Status)
	assert.Contains(t, reply.Error, "failed to parse request")
}

func TestServer_ScanFrameMessage_Cancelled(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := json.Marshal(FrameRequest{ID: "c", Image: pngBytes(t, 4, 4)})
	require.NoError(t, err)
	reply := srv.scanFrameMessage(ctx, data)
	assert.Equal(t, "c", reply.ID)
	assert.Equal(t, replyError, reply.Status)
	assert.Nil(t, reply.Records)
}

func TestWSReadLimit(t *testing.T) {
	assert.Equal(t, int64(1398104+64<<10), wsReadLimit(1))
	assert.Greater(t, wsReadLimit(20), int64(20<<20))
}

func TestFramesWebSocket_OversizedFrameClosesStream(t *testing.T) {
	conn := dialFrames(t, newTestServer(t, &stubEngine{}, func(c *Config) { c.MaxUploadMB = 1 }))

	big := make([]byte, 2<<20)
	_ = conn.WriteJSON(FrameRequest{ID: "big", Image: big})

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		assert.Equal(t, websocket.CloseMessageTooBig, closeErr.Code)
	}
}
