// Package benchmark measures scan throughput over a set of frames for a
// number of format selections.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
)

// Timer measures the duration of a named section.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	NumGC           uint32 `json:"num_gc"`
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		NumGC:           m.NumGC,
	}
}

// Case is one benchmarked configuration.
type Case struct {
	Name          string            `json:"name"`
	Formats       barcode.FormatSet `json:"-"`
	CheckInverted bool              `json:"check_inverted"`
}

// DefaultCases compares the full format set against narrow selections and
// the cost of the inverted pass.
func DefaultCases() []Case {
	return []Case{
		{Name: "all", Formats: barcode.AllFormats()},
		{Name: "all+inverted", Formats: barcode.AllFormats(), CheckInverted: true},
		{Name: "qr", Formats: barcode.NewFormatSet(barcode.FormatQR)},
		{Name: "retail", Formats: barcode.NewFormatSet(
			barcode.FormatEAN13, barcode.FormatEAN8, barcode.FormatUPCA, barcode.FormatUPCE)},
	}
}

// Result holds the outcome of one case.
type Result struct {
	Case           Case           `json:"case"`
	Formats        string         `json:"formats"`
	Frames         int            `json:"frames"`
	Iterations     int            `json:"iterations"`
	Duration       time.Duration  `json:"duration_ns"`
	FramesPerSec   float64        `json:"frames_per_sec"`
	AvgFrame       time.Duration  `json:"avg_frame_ns"`
	Records        int64          `json:"records"`
	Failed         int64          `json:"failed"`
	AllocatedBytes uint64         `json:"allocated_bytes"`
	Profile        map[string]any `json:"profile"`
	Error          string         `json:"error,omitempty"`
}

// String returns a one-line summary.
func (r Result) String() string {
	if r.Error != "" {
		return fmt.Sprintf("%s: ERROR - %s", r.Case.Name, r.Error)
	}
	return fmt.Sprintf("%s: %d frames x %d, avg: %v/frame, %.1f frames/s, records: %d, failed: %d, alloc: %d KB",
		r.Case.Name, r.Frames, r.Iterations, r.AvgFrame.Round(time.Microsecond), r.FramesPerSec,
		r.Records, r.Failed, r.AllocatedBytes/1024)
}

// Scanner benchmarks a processor over a fixed set of frames.
type Scanner struct {
	processor *pipeline.Processor
	profiler  *pipeline.Profiler
	sources   []pipeline.Source
	workers   int
}

// NewScanner prepares a benchmark of engine over sources using workers
// goroutines (0 = one per CPU).
func NewScanner(engine barcode.Engine, sources []pipeline.Source, workers int) *Scanner {
	profiler := &pipeline.Profiler{}
	return &Scanner{
		processor: pipeline.NewProcessor(
			pipeline.WithCache(scanner.NewCache(engine)),
			pipeline.WithProfiler(profiler),
		),
		profiler: profiler,
		sources:  sources,
		workers:  workers,
	}
}

// Run measures every case for the given number of iterations over all
// frames. A warmup pass builds the detector before timing starts.
func (s *Scanner) Run(ctx context.Context, cases []Case, iterations int) []Result {
	if iterations <= 0 {
		iterations = 1
	}
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		results = append(results, s.runCase(ctx, c, iterations))
	}
	return results
}

func (s *Scanner) runCase(ctx context.Context, c Case, iterations int) Result {
	res := Result{Case: c, Formats: c.Formats.String(), Frames: len(s.sources), Iterations: iterations}
	if len(s.sources) == 0 {
		res.Error = "no frames to scan"
		return res
	}
	args := pipeline.Args(c.Formats, pipeline.Options{CheckInverted: c.CheckInverted})
	cfg := pipeline.ParallelConfig{MaxWorkers: s.workers}

	s.processor.ProcessAll(ctx, s.sources[:1], args, cfg)
	s.profiler.Reset()

	runtime.GC()
	before := GetMemoryStats()
	timer := NewTimer(c.Name)
	for range iterations {
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			return res
		}
		s.processor.ProcessAll(ctx, s.sources, args, cfg)
	}
	res.Duration = timer.Stop()
	after := GetMemoryStats()

	total := len(s.sources) * iterations
	res.AvgFrame = res.Duration / time.Duration(total)
	if secs := res.Duration.Seconds(); secs > 0 {
		res.FramesPerSec = float64(total) / secs
	}
	res.Records = s.profiler.RecordsReported.Load()
	res.Failed = s.profiler.FramesFailed.Load()
	res.AllocatedBytes = after.TotalAllocBytes - before.TotalAllocBytes
	res.Profile = s.profiler.Snapshot()
	return res
}

// PrintResults writes one line per result.
func PrintResults(w io.Writer, results []Result) {
	_, _ = fmt.Fprintln(w, "\nBenchmark Results:")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 18))
	for _, r := range results {
		_, _ = fmt.Fprintln(w, r.String())
	}
}
