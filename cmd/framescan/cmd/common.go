package cmd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/config"
	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
	"github.com/MeKo-Tech/framescan/internal/utils"
	"github.com/spf13/cobra"
)

// errFramesFailed is returned after the results were written when at least one
// frame failed and --continue-on-error is off.
var errFramesFailed = errors.New("one or more frames failed")

// addScanFlags registers the flags shared by the scan and pdf commands.
func addScanFlags(c *cobra.Command) {
	c.Flags().StringSlice("formats", []string{"all"}, "barcode formats to scan for (e.g. qr,ean13,code128 or all)")
	c.Flags().Bool("check-inverted", false, "also scan the colour-inverted frame (light-on-dark codes)")
	c.Flags().Bool("try-harder", false, "spend more time looking for barcodes")
	c.Flags().String("device-orientation", "", "device orientation (portrait, landscape-left, face-up, face-down, ...)")
	c.Flags().String("interface-orientation", "", "interface orientation used when the device lies flat")

	c.Flags().StringP("format", "f", "json", "output format: json, yaml, text")
	c.Flags().StringP("output", "o", "", "output file (default: stdout)")
	c.Flags().String("overlay-dir", "", "directory to save overlay images with detected barcodes")
	c.Flags().String("overlay-color", "#FF0000", "overlay polygon color (hex)")

	c.Flags().IntP("workers", "w", runtime.NumCPU(), "number of parallel workers")
	c.Flags().Bool("continue-on-error", true, "exit successfully even if some frames failed")
	c.Flags().Bool("progress", false, "show progress on stderr")
}

// applyScanFlags overlays explicitly set flags on the loaded configuration.
func applyScanFlags(c *cobra.Command, cfg *config.Config) error {
	flags := c.Flags()
	if flags.Changed("formats") {
		cfg.Scanner.Formats, _ = flags.GetStringSlice("formats")
	}
	if flags.Changed("check-inverted") {
		cfg.Scanner.CheckInverted, _ = flags.GetBool("check-inverted")
	}
	if flags.Changed("try-harder") {
		cfg.Scanner.TryHarder, _ = flags.GetBool("try-harder")
	}
	if flags.Changed("device-orientation") {
		cfg.Orientation.Device, _ = flags.GetString("device-orientation")
	}
	if flags.Changed("interface-orientation") {
		cfg.Orientation.Interface, _ = flags.GetString("interface-orientation")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("output") {
		cfg.Output.File, _ = flags.GetString("output")
	}
	if flags.Changed("overlay-dir") {
		cfg.Output.OverlayDir, _ = flags.GetString("overlay-dir")
	}
	if flags.Changed("overlay-color") {
		cfg.Output.OverlayColor, _ = flags.GetString("overlay-color")
	}
	if flags.Changed("workers") {
		cfg.Batch.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("continue-on-error") {
		cfg.Batch.ContinueOnError, _ = flags.GetBool("continue-on-error")
	}
	return cfg.Validate()
}

// scanJob bundles what a scanning command needs once its flags are resolved.
type scanJob struct {
	cfg         *config.Config
	processor   *pipeline.Processor
	orientation orientation.StaticProvider
	args        []any
}

func newScanJob(cfg *config.Config) (*scanJob, error) {
	provider, err := cfg.OrientationProvider()
	if err != nil {
		return nil, err
	}
	args, err := cfg.ToArgs()
	if err != nil {
		return nil, err
	}
	processor := pipeline.NewProcessor(
		pipeline.WithCache(scanner.NewCache(barcode.NewEngine(cfg.ToEngineOptions()))),
		pipeline.WithOrientation(provider),
		pipeline.WithLogger(slog.Default()),
	)
	return &scanJob{cfg: cfg, processor: processor, orientation: provider, args: args}, nil
}

// run scans the sources and writes results and overlays.
func (j *scanJob) run(c *cobra.Command, sources []pipeline.Source) error {
	pc := j.cfg.ToParallelConfig()
	if show, _ := c.Flags().GetBool("progress"); show {
		pc.ProgressCallback = pipeline.NewConsoleProgressCallback(c.ErrOrStderr(), "scan")
	}

	results := j.processor.ProcessAll(c.Context(), sources, j.args, pc)

	if j.cfg.Output.OverlayDir != "" {
		if err := writeOverlays(j.cfg.Output.OverlayDir, sources, results, orientation.ResolveFrom(j.orientation), j.cfg.Output.OverlayColor); err != nil {
			return err
		}
	}
	if err := writeResults(c.OutOrStdout(), results, j.cfg.Output.Format, j.cfg.Output.File); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		slog.Warn("Some frames failed", "failed", failed, "total", len(results))
		if !j.cfg.Batch.ContinueOnError {
			return fmt.Errorf("%w: %d of %d", errFramesFailed, failed, len(results))
		}
	}
	return nil
}

// writeResults formats results and writes them to file, or to out if file is empty.
func writeResults(out io.Writer, results []pipeline.FrameResult, format, file string) error {
	s, err := pipeline.FormatResults(results, format)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if file == "" {
		_, err = io.WriteString(out, s)
		return err
	}
	if err := os.WriteFile(file, []byte(s), 0o644); err != nil { //nolint:gosec // results are not secret
		return fmt.Errorf("failed to write output file: %w", err)
	}
	slog.Info("Results written", "file", file, "frames", len(results))
	return nil
}

// writeOverlays saves one PNG per frame with at least one detected barcode.
func writeOverlays(dir string, sources []pipeline.Source, results []pipeline.FrameResult, correction orientation.Correction, hex string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	col := utils.ParseHexColor(hex)
	if col == nil {
		col = color.RGBA{R: 255, A: 255}
	}

	for i, r := range results {
		if len(r.Records) == 0 || i >= len(sources) || sources[i].Frame == nil {
			continue
		}
		img, err := sources[i].Frame.PixelBuffer()
		if err != nil {
			slog.Warn("Skipping overlay", "source", r.Source, "error", err)
			continue
		}
		ov := pipeline.RenderOverlay(img, r.Records, correction, col)
		path := filepath.Join(dir, overlayName(r.Source))
		if err := savePNG(path, ov); err != nil {
			return err
		}
		slog.Debug("Overlay written", "file", path)
	}
	return nil
}

var overlayNameReplacer = strings.NewReplacer("#", "_", "&", "_", "=", "-", "/", "_", "\\", "_")

func overlayName(source string) string {
	base := filepath.Base(source)
	if i := strings.Index(base, "#"); i >= 0 {
		base = strings.TrimSuffix(base[:i], filepath.Ext(base[:i])) + base[i:]
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return overlayNameReplacer.Replace(base) + "_overlay.png"
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path) //nolint:gosec // path derives from the overlay directory
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return f.Close()
}
