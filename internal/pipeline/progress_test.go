package pipeline

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpProgressCallback(t *testing.T) {
	callback := NoOpProgressCallback{}
	callback.OnStart(10)
	callback.OnProgress(5, 10)
	callback.OnComplete()
	callback.OnError(3, assert.AnError)
}

func TestConsoleProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	callback := NewConsoleProgressCallback(&buf, "scan ")

	callback.OnStart(4)
	assert.Contains(t, buf.String(), "scan 0/4 frames")

	buf.Reset()
	callback.OnProgress(2, 4)
	output := buf.String()
	assert.Contains(t, output, "2/4")
	assert.Contains(t, output, "####################....................")

	buf.Reset()
	callback.OnError(3, assert.AnError)
	callback.OnComplete()
	assert.Contains(t, buf.String(), "(1 failed)")
}

func TestConsoleProgressCallback_UpdateThrottling(t *testing.T) {
	var buf bytes.Buffer
	callback := NewConsoleProgressCallback(&buf, "")
	callback.updateInterval = time.Hour

	callback.OnStart(10)
	callback.OnProgress(1, 10)
	buf.Reset()

	callback.OnProgress(2, 10)
	assert.Empty(t, buf.String(), "updates inside the interval are dropped")

	callback.OnProgress(10, 10)
	assert.Contains(t, buf.String(), "10/10", "the final update is always drawn")
}

func TestLogProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	callback := NewLogProgressCallback(logger, slog.LevelInfo).WithInterval(5)

	callback.OnStart(10)
	assert.Contains(t, buf.String(), "Scanning frames")
	assert.Contains(t, buf.String(), "total=10")

	buf.Reset()
	callback.OnProgress(3, 10)
	assert.Empty(t, buf.String())
	callback.OnProgress(5, 10)
	assert.Contains(t, buf.String(), "done=5")

	buf.Reset()
	callback.OnError(7, assert.AnError)
	assert.Contains(t, buf.String(), "Frame failed")
	assert.Contains(t, buf.String(), "index=7")

	buf.Reset()
	callback.OnComplete()
	assert.Contains(t, buf.String(), "Scan completed")
}
