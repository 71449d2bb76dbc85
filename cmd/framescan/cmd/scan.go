package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/utils"
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [files or directories...]",
	Short: "Scan image files for barcodes",
	Long: `Scan one or more image files for barcodes. Each file is treated as one
camera frame. Directories are expanded to the supported images they contain.

Supported formats: JPEG, PNG, BMP, GIF, TIFF, WebP

Examples:
  framescan scan shelf.jpg
  framescan scan photos/ --recursive --formats ean13,upca --format text
  framescan scan label.png --check-inverted --overlay-dir overlays/
  framescan scan frame.png --device-orientation face-up --interface-orientation landscape-left`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if err := applyScanFlags(cmd, cfg); err != nil {
			return err
		}
		recursive, _ := cmd.Flags().GetBool("recursive")
		paths, err := collectImagePaths(args, recursive)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no supported image files found")
		}

		job, err := newScanJob(cfg)
		if err != nil {
			return err
		}
		return job.run(cmd, loadImageSources(paths))
	},
}

// collectImagePaths expands directories into the supported images they
// contain. Explicit file arguments are kept even if their extension is
// unknown, so decoding reports the problem for that frame.
func collectImagePaths(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if utils.IsSupportedImage(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// loadImageSources decodes every path into a frame. Files that cannot be
// loaded become failed sources so they are still reported.
func loadImageSources(paths []string) []pipeline.Source {
	loaded := utils.BatchLoadImages(paths)
	sources := make([]pipeline.Source, len(loaded))
	for i, l := range loaded {
		sources[i] = pipeline.Source{Name: l.Path, Err: l.Err}
		if l.Err == nil {
			sources[i].Frame = frame.NewImageFrame(l.Img)
		}
	}
	return sources
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd)
	scanCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
}
