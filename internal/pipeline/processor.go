// Package pipeline runs barcode detection on single frames: it orchestrates
// the primary and optional inverted detection passes and normalizes the
// engine's detections into host-facing records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/scanner"
)

// ErrDetection reports that the engine failed on the primary pass.
var ErrDetection = errors.New("pipeline: detection failed")

// Options are the per-frame options recognised in the second argument.
type Options struct {
	// CheckInverted adds a second pass over the colour-inverted frame.
	CheckInverted bool
}

// ParseOptions reads Options from the optional per-frame configuration map.
// Absent, non-map or non-boolean values fall back to the defaults.
func ParseOptions(arg any) Options {
	var opts Options
	m, ok := arg.(map[string]any)
	if !ok {
		return opts
	}
	if v, ok := m["checkInverted"].(bool); ok {
		opts.CheckInverted = v
	}
	return opts
}

// Args builds the per-frame argument list from a format set and options.
func Args(formats barcode.FormatSet, opts Options) []any {
	return []any{scanner.CodesOf(formats), map[string]any{"checkInverted": opts.CheckInverted}}
}

// Processor turns frames into barcode records. It holds no per-frame state
// and is safe for concurrent use.
type Processor struct {
	cache    *scanner.Cache
	provider orientation.Provider
	logger   *slog.Logger
	profiler *Profiler
}

// Option configures a Processor.
type Option func(*Processor)

// WithCache sets the scanner config cache. Defaults to scanner.Default().
func WithCache(c *scanner.Cache) Option {
	return func(p *Processor) { p.cache = c }
}

// WithOrientation sets the device orientation source. Without one no
// correction is applied.
func WithOrientation(o orientation.Provider) Option {
	return func(p *Processor) { p.provider = o }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithProfiler aggregates pass timings and frame counters into pr.
func WithProfiler(pr *Profiler) Option {
	return func(p *Processor) { p.profiler = pr }
}

// NewProcessor creates a processor.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{}
	for _, o := range opts {
		o(p)
	}
	if p.cache == nil {
		p.cache = scanner.Default()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// ForOrientation returns a copy of the processor that reads orientation
// from o. The copy shares the scanner cache.
func (p *Processor) ForOrientation(o orientation.Provider) *Processor {
	cp := *p
	cp.provider = o
	return &cp
}

// Cache returns the scanner config cache the processor uses.
func (p *Processor) Cache() *scanner.Cache { return p.cache }

// Process is the per-frame entry point. args[0] holds the format codes and
// args[1], if present, the option map. Failures are reported in Result.Err
// and never yield partial records.
func (p *Processor) Process(ctx context.Context, f frame.Frame, args []any) Result {
	start := time.Now()

	var formatsArg, optsArg any
	if len(args) > 0 {
		formatsArg = args[0]
	}
	if len(args) > 1 {
		optsArg = args[1]
	}

	formats, err := scanner.ParseFormats(formatsArg)
	if err != nil {
		return p.fail(StatusInvalidFormats, err)
	}
	cfg, err := p.cache.Ensure(formats)
	if err != nil {
		return p.fail(StatusConfigError, err)
	}

	detections, err := p.Run(ctx, f, cfg, ParseOptions(optsArg))
	if err != nil {
		status := StatusDetectionError
		if errors.Is(err, frame.ErrBufferAccess) || errors.Is(err, frame.ErrRasterize) {
			status = StatusBufferError
		}
		return p.fail(status, err)
	}

	records := NormalizeAll(detections)
	framesTotal.WithLabelValues(StatusOK).Inc()
	p.logger.Debug("Frame processed",
		"formats", formats.String(),
		"records", len(records),
		"duration", time.Since(start))
	res := Result{Records: records}
	p.profiler.recordFrame(res)
	return res
}

func (p *Processor) fail(status string, err error) Result {
	framesTotal.WithLabelValues(status).Inc()
	p.logger.Debug("Frame skipped", "status", status, "error", err)
	res := Result{Err: err}
	p.profiler.recordFrame(res)
	return res
}

// Run executes the detection passes for one frame and returns the
// detections in report order: primary pass first, then the inverted pass.
// Only a failure on the primary path is returned; the inverted pass is
// skipped when its image cannot be produced or its detection fails.
func (p *Processor) Run(ctx context.Context, f frame.Frame, cfg *scanner.Config, opts Options) ([]barcode.Detection, error) {
	if cfg == nil || cfg.Detector == nil {
		return nil, fmt.Errorf("%w: no scanner configured", ErrDetection)
	}

	correction := orientation.ResolveFrom(p.provider)
	upright, err := frame.Prepare(f, correction)
	if err != nil {
		return nil, err
	}

	primary, err := p.detect(ctx, cfg.Detector, upright, passPrimary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetection, err)
	}
	out := make([]barcode.Detection, 0, len(primary))
	out = append(out, primary...)

	if !opts.CheckInverted {
		return out, nil
	}

	inverted, err := frame.Invert(f)
	if err != nil {
		p.logger.Debug("Skipping inverted pass", "error", err)
		return out, nil
	}
	extra, err := p.detect(ctx, cfg.Detector, inverted, passInverted)
	if err != nil {
		p.logger.Debug("Inverted pass failed", "error", err)
		return out, nil
	}
	return append(out, extra...), nil
}

func (p *Processor) detect(ctx context.Context, det barcode.Detector, img image.Image, pass string) ([]barcode.Detection, error) {
	start := time.Now()
	res, err := det.Detect(ctx, img)
	elapsed := time.Since(start)
	passDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
	p.profiler.recordPass(pass, elapsed)
	if err != nil {
		return nil, err
	}
	detectionsTotal.WithLabelValues(pass).Add(float64(len(res)))
	return res, nil
}
