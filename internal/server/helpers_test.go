package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/content"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
	"github.com/stretchr/testify/require"
)

// stubEngine builds a detector that always reports the same detections and
// remembers the format sets it was built for.
type stubEngine struct {
	mu         sync.Mutex
	detections []barcode.Detection
	err        error
	built      []barcode.FormatSet
}

func (e *stubEngine) Build(formats barcode.FormatSet) (barcode.Detector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.built = append(e.built, formats)
	return e, nil
}

func (e *stubEngine) Detect(ctx context.Context, _ image.Image) ([]barcode.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.err != nil {
		return nil, e.err
	}
	out := make([]barcode.Detection, len(e.detections))
	copy(out, e.detections)
	return out, nil
}

func (e *stubEngine) lastBuilt() barcode.FormatSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.built) == 0 {
		return 0
	}
	return e.built[len(e.built)-1]
}

func qrDetection(value string) barcode.Detection {
	return barcode.Detection{
		Format:       barcode.FormatQR,
		RawValue:     value,
		DisplayValue: value,
		CornerPoints: []barcode.Point{{X: 2, Y: 2}, {X: 12, Y: 2}, {X: 12, Y: 12}, {X: 2, Y: 12}},
		Content:      content.Text{Kind: content.TypeText, Value: value},
	}
}

var errEngineDown = errors.New("engine down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer returns a server whose processor is backed by engine.
func newTestServer(t *testing.T, engine *stubEngine, mutate ...func(*Config)) *Server {
	t.Helper()
	processor := pipeline.NewProcessor(
		pipeline.WithCache(scanner.NewCache(engine)),
		pipeline.WithLogger(discardLogger()),
	)
	cfg := Config{CORSOrigin: "*", Logger: discardLogger()}
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := NewServer(cfg, processor)
	require.NoError(t, err)
	return srv
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a POST with one file part and plain fields.
func multipartRequest(t *testing.T, target, field, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
