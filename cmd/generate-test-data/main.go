package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/framescan/internal/testutil"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir  = flag.String("out", "testdata/frames", "Output directory, relative to the project root")
		list    = flag.Bool("list", false, "List the fixtures without writing them")
		verbose = flag.Bool("v", false, "Verbose output")
		help    = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate synthetic barcode frames for framescan testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # Write testdata/frames\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -out /tmp/frames     # Write elsewhere\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -list                # Show the fixture set\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	fixtures := testutil.DefaultFixtures()
	if *list {
		for _, f := range fixtures {
			fmt.Printf("%-16s %s\n", f.Name, f.Description)
		}
		return
	}

	dir := *outDir
	if !filepath.IsAbs(dir) {
		root, err := testutil.GetProjectRoot()
		if err != nil {
			slog.Error("Failed to find project root", "error", err)
			os.Exit(1)
		}
		if *verbose {
			slog.Info("Project root", "path", root)
		}
		dir = filepath.Join(root, dir)
	}

	slog.Info("Generating barcode frames...", "dir", dir, "fixtures", len(fixtures))
	if err := testutil.WriteFixtures(dir, fixtures); err != nil {
		slog.Error("Failed to generate test data", "error", err)
		os.Exit(1)
	}
	if *verbose {
		for _, f := range fixtures {
			slog.Info("Wrote fixture", "name", f.Name, "file", f.InputFile, "barcodes", len(f.Expected))
		}
	}
	slog.Info("Test data generation completed successfully!")
}
