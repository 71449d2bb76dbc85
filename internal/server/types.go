// Package server exposes the barcode pipeline over HTTP and a WebSocket
// frame stream.
package server

import (
	"errors"
	"image/color"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	processor     *pipeline.Processor
	formats       barcode.FormatSet
	checkInverted bool
	orientation   orientation.StaticProvider
	corsOrigin    string
	maxUploadMB   int64
	timeout       time.Duration
	overlayColor  color.Color
	limiter       *RateLimiter
	logger        *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int

	// Formats and CheckInverted apply to requests that do not name their own.
	Formats       barcode.FormatSet
	CheckInverted bool

	// Orientation applies to requests that do not report one.
	Orientation  orientation.StaticProvider
	OverlayColor string

	// Per-client limits; zero disables a limit.
	RateLimitPerMinute int
	MaxUploadMBPerDay  int64

	Logger *slog.Logger
}

// NewServer creates a server scanning with processor.
func NewServer(cfg Config, processor *pipeline.Processor) (*Server, error) {
	if processor == nil {
		return nil, errors.New("server: processor is required")
	}
	if cfg.Formats.IsEmpty() {
		cfg.Formats = barcode.AllFormats()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 20
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 30
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	overlay := utils.ParseHexColor(cfg.OverlayColor)
	if overlay == nil {
		overlay = color.RGBA{R: 255, A: 255}
	}
	return &Server{
		processor:     processor,
		formats:       cfg.Formats,
		checkInverted: cfg.CheckInverted,
		orientation:   cfg.Orientation,
		corsOrigin:    cfg.CORSOrigin,
		maxUploadMB:   cfg.MaxUploadMB,
		timeout:       time.Duration(cfg.TimeoutSec) * time.Second,
		overlayColor:  overlay,
		limiter:       NewRateLimiter(cfg.RateLimitPerMinute, cfg.MaxUploadMBPerDay*1024*1024),
		logger:        cfg.Logger,
	}, nil
}

// SetupRoutes registers all endpoints on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/formats", s.corsMiddleware(s.formatsHandler))
	mux.HandleFunc("/scan", s.corsMiddleware(s.rateLimitMiddleware(s.scanHandler)))
	mux.HandleFunc("/scan/pdf", s.corsMiddleware(s.rateLimitMiddleware(s.scanPDFHandler)))
	mux.HandleFunc("/ws/frames", s.framesWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type FormatInfo struct {
	Name      string `json:"name"`
	Code      int    `json:"code"`
	Decodable bool   `json:"decodable"`
}

type FormatsResponse struct {
	Formats []FormatInfo `json:"formats"`
	Count   int          `json:"count"`
}

// ScanResponse is the reply to a single-frame scan. Records is null when the
// frame failed, and an array (possibly empty) otherwise.
type ScanResponse struct {
	Success bool                     `json:"success"`
	Records []pipeline.BarcodeRecord `json:"records"`
	Width   int                      `json:"width,omitempty"`
	Height  int                      `json:"height,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// DocumentResponse is the reply to a PDF scan, one result per embedded image.
type DocumentResponse struct {
	Success bool                   `json:"success"`
	File    string                 `json:"file"`
	Frames  []pipeline.FrameResult `json:"frames"`
	Error   string                 `json:"error,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
