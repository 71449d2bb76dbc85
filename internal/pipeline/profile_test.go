package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_RecordsPassesAndFrames(t *testing.T) {
	eng := newFakeEngine(
		passResponse{detections: []barcode.Detection{textDetection("a"), textDetection("b")}},
		passResponse{detections: []barcode.Detection{textDetection("c")}},
		passResponse{err: errors.New("engine down")},
	)
	pr := &Profiler{}
	p := newTestProcessor(eng, WithProfiler(pr))

	res := p.Process(context.Background(), frame.NewImageFrame(testImage()), qrArgs(true))
	require.NoError(t, res.Err)
	res = p.Process(context.Background(), frame.NewImageFrame(testImage()), qrArgs(false))
	require.Error(t, res.Err)

	assert.Equal(t, int64(2), pr.FramesProcessed.Load())
	assert.Equal(t, int64(1), pr.FramesFailed.Load())
	assert.Equal(t, int64(3), pr.RecordsReported.Load())
	assert.Equal(t, int64(1), pr.InvertedPasses.Load())

	snap := pr.Snapshot()
	assert.Equal(t, int64(2), snap["frames"])
	assert.Equal(t, int64(3), snap["records"])
	assert.Contains(t, snap, "primary_ms_per_frame")
	assert.Contains(t, snap, "inverted_ms_per_pass")

	pr.Reset()
	assert.Equal(t, int64(0), pr.FramesProcessed.Load())
	assert.NotContains(t, pr.Snapshot(), "primary_ms_per_frame")
}

func TestProfiler_InvalidFormatsCountAsFailed(t *testing.T) {
	pr := &Profiler{}
	p := newTestProcessor(newFakeEngine(), WithProfiler(pr))

	res := p.Process(context.Background(), frame.NewImageFrame(testImage()), []any{"qr"})
	require.Error(t, res.Err)
	assert.Equal(t, int64(1), pr.FramesFailed.Load())
	assert.Equal(t, int64(0), pr.PrimaryTimeNs.Load())
}

func TestProfiler_NilIsNoOp(t *testing.T) {
	var pr *Profiler
	pr.recordPass(passPrimary, 0)
	pr.recordFrame(Result{})
}
