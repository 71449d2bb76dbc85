package pipeline

import (
	"sync/atomic"
	"time"
)

// Profiler aggregates pass timings and frame counters across many frames.
// It is safe for concurrent use by the workers of ProcessAll.
type Profiler struct {
	FramesProcessed atomic.Int64
	FramesFailed    atomic.Int64
	RecordsReported atomic.Int64
	PrimaryTimeNs   atomic.Int64
	InvertedTimeNs  atomic.Int64
	InvertedPasses  atomic.Int64
}

func (p *Profiler) recordPass(pass string, d time.Duration) {
	if p == nil {
		return
	}
	if pass == passInverted {
		p.InvertedTimeNs.Add(d.Nanoseconds())
		p.InvertedPasses.Add(1)
		return
	}
	p.PrimaryTimeNs.Add(d.Nanoseconds())
}

func (p *Profiler) recordFrame(res Result) {
	if p == nil {
		return
	}
	p.FramesProcessed.Add(1)
	if res.Err != nil {
		p.FramesFailed.Add(1)
		return
	}
	p.RecordsReported.Add(int64(len(res.Records)))
}

// Reset zeroes every counter.
func (p *Profiler) Reset() {
	p.FramesProcessed.Store(0)
	p.FramesFailed.Store(0)
	p.RecordsReported.Store(0)
	p.PrimaryTimeNs.Store(0)
	p.InvertedTimeNs.Store(0)
	p.InvertedPasses.Store(0)
}

// Snapshot returns cumulative metrics in milliseconds for readability.
func (p *Profiler) Snapshot() map[string]any {
	frames := p.FramesProcessed.Load()
	primary := p.PrimaryTimeNs.Load()
	inverted := p.InvertedTimeNs.Load()
	out := map[string]any{
		"frames":            frames,
		"failed":            p.FramesFailed.Load(),
		"records":           p.RecordsReported.Load(),
		"inverted_passes":   p.InvertedPasses.Load(),
		"primary_ms_total":  primary / 1_000_000,
		"inverted_ms_total": inverted / 1_000_000,
	}
	if frames > 0 {
		out["primary_ms_per_frame"] = float64(primary) / 1_000_000.0 / float64(frames)
	}
	if n := p.InvertedPasses.Load(); n > 0 {
		out["inverted_ms_per_pass"] = float64(inverted) / 1_000_000.0 / float64(n)
	}
	return out
}
