package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/utils"
	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// wsEnvelopeBytes is the room left for the JSON fields around the image.
const wsEnvelopeBytes = 64 << 10

// wsReadLimit is the largest frame message accepted: an upload of the
// configured maximum, base64 encoded, plus its JSON envelope.
func wsReadLimit(maxUploadMB int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(maxUploadMB<<20))) + wsEnvelopeBytes
}

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FrameRequest is one camera frame sent over /ws/frames. Args follows the
// per-frame argument list: the format codes, then an optional option map.
// When Args is empty the server defaults apply.
type FrameRequest struct {
	ID                   string `json:"id,omitempty"`
	Image                []byte `json:"image"`
	Args                 []any  `json:"args,omitempty"`
	DeviceOrientation    string `json:"deviceOrientation,omitempty"`
	InterfaceOrientation string `json:"interfaceOrientation,omitempty"`
}

// FrameReply answers one FrameRequest. Records is null when the frame failed
// and an array, possibly empty, otherwise.
type FrameReply struct {
	ID      string                   `json:"id,omitempty"`
	Status  string                   `json:"status"`
	Records []pipeline.BarcodeRecord `json:"records"`
	Error   string                   `json:"error,omitempty"`
}

const (
	replyOK    = "ok"
	replyError = "error"
)

// framesWebSocketHandler streams frames from a client and answers each with
// the barcodes found in it. Frames on one connection are scanned in order.
func (s *Server) framesWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleFrameStream(r.Context(), conn, clientKey(r))
}

func (s *Server) handleFrameStream(ctx context.Context, conn *websocket.Conn, client string) {
	conn.SetReadLimit(wsReadLimit(s.maxUploadMB))
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if messageType != websocket.TextMessage {
			s.sendFrameReply(conn, FrameReply{Status: replyError, Error: "expected a JSON text message"})
			continue
		}
		if err := s.limiter.Allow(client, int64(len(data))); err != nil {
			rateLimitedTotal.WithLabelValues("websocket").Inc()
			s.sendFrameReply(conn, FrameReply{Status: replyError, Error: err.Error()})
			continue
		}
		s.sendFrameReply(conn, s.scanFrameMessage(ctx, data))
	}
}

// scanFrameMessage decodes and scans one frame message.
func (s *Server) scanFrameMessage(ctx context.Context, data []byte) FrameReply {
	var req FrameRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return FrameReply{Status: replyError, Error: fmt.Sprintf("failed to parse request: %v", err)}
	}
	reply := FrameReply{ID: req.ID}

	img, _, err := utils.DecodeImage(req.Image)
	if err != nil {
		reply.Status, reply.Error = replyError, err.Error()
		return reply
	}
	provider, err := s.requestOrientation(req.DeviceOrientation, req.InterfaceOrientation)
	if err != nil {
		reply.Status, reply.Error = replyError, err.Error()
		return reply
	}
	args := req.Args
	if len(args) == 0 {
		args = pipeline.Args(s.formats, pipeline.Options{CheckInverted: s.checkInverted})
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res := s.processor.ForOrientation(provider).Process(ctx, frame.NewImageFrame(img), args)
	if res.Err != nil {
		reply.Status, reply.Error = replyError, res.Err.Error()
		return reply
	}
	reply.Status, reply.Records = replyOK, res.Records
	return reply
}

func (s *Server) sendFrameReply(conn *websocket.Conn, reply FrameReply) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(reply); err != nil {
		s.logger.Error("Failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
