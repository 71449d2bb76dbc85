package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/framescan/internal/frame"
)

// Source is a named frame, e.g. an image file or a PDF page image.
type Source struct {
	Name  string
	Frame frame.Frame
	// Err marks a source that could not be loaded; it is reported as is.
	Err error
}

// ParallelConfig controls batch scanning.
type ParallelConfig struct {
	MaxWorkers       int // 0 = runtime.NumCPU()
	ProgressCallback ProgressCallback
}

// DefaultParallelConfig returns one worker per CPU and no progress reporting.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

type sourceJob struct {
	index  int
	source Source
}

// ProcessAll scans every source with the same arguments on a worker pool and
// returns one FrameResult per source, in input order. Frames share the
// processor's scanner cache, so all workers use the same detector.
func (p *Processor) ProcessAll(ctx context.Context, sources []Source, args []any, cfg ParallelConfig) []FrameResult {
	results := make([]FrameResult, len(sources))
	if len(sources) == 0 {
		return results
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(sources))
	progress := cfg.ProgressCallback
	if progress == nil {
		progress = NoOpProgressCallback{}
	}

	progress.OnStart(len(sources))
	defer progress.OnComplete()

	jobs := make(chan sourceJob)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := p.processSource(ctx, job.source, args)
				results[job.index] = res

				mu.Lock()
				done++
				if err != nil {
					progress.OnError(job.index, err)
				}
				progress.OnProgress(done, len(sources))
				mu.Unlock()
			}
		}()
	}

	for i, s := range sources {
		select {
		case jobs <- sourceJob{index: i, source: s}:
		case <-ctx.Done():
			// mark the rest as cancelled so callers still get one result per source
			for j := i; j < len(sources); j++ {
				results[j] = FrameResult{Source: sources[j].Name, Error: ctx.Err().Error()}
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// ProcessSource scans a single named source.
func (p *Processor) ProcessSource(ctx context.Context, s Source, args []any) FrameResult {
	res, _ := p.processSource(ctx, s, args)
	return res
}

func (p *Processor) processSource(ctx context.Context, s Source, args []any) (FrameResult, error) {
	start := time.Now()
	out := FrameResult{Source: s.Name}
	if s.Err != nil {
		out.Error = s.Err.Error()
		return out, s.Err
	}
	if s.Frame != nil {
		if img, err := s.Frame.PixelBuffer(); err == nil && img != nil {
			out.Width, out.Height = img.Bounds().Dx(), img.Bounds().Dy()
		}
	}
	res := p.Process(ctx, s.Frame, args)
	if res.Err != nil {
		out.Error = res.Err.Error()
	} else {
		out.Records = res.Records
	}
	out.Processing.TotalNs = time.Since(start).Nanoseconds()
	return out, res.Err
}
