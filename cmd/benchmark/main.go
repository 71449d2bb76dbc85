package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/benchmark"
	"github.com/MeKo-Tech/framescan/internal/frame"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/testutil"
	"github.com/MeKo-Tech/framescan/internal/utils"
)

func main() {
	var (
		framesDir  = flag.String("frames", "", "Directory of frames to scan (default: generated fixtures)")
		iterations = flag.Int("iterations", 3, "Number of passes over the frame set per case")
		workers    = flag.Int("workers", 0, "Concurrent workers (0 = one per CPU)")
		tryHarder  = flag.Bool("try-harder", false, "Enable the exhaustive search mode of the engine")
		outputFile = flag.String("output", "", "Write results as JSON to this file (optional)")
		verbose    = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	fmt.Println("framescan Scan Throughput Benchmark")
	fmt.Println("===================================")

	dir := *framesDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "framescan-bench-*")
		if err != nil {
			log.Fatalf("Failed to create temp directory: %v", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()
		if err := testutil.WriteFixtures(tmp, testutil.DefaultFixtures()); err != nil {
			log.Fatalf("Failed to generate frames: %v", err)
		}
		dir = tmp
	}

	sources, err := loadFrames(dir)
	if err != nil {
		log.Fatalf("Failed to load frames: %v", err)
	}
	if *verbose {
		for _, s := range sources {
			fmt.Printf("Added frame: %s\n", s.Name)
		}
	}

	fmt.Printf("Running benchmarks over %d frames with %d iterations per case...\n", len(sources), *iterations)

	engine := barcode.NewEngine(barcode.EngineOptions{TryHarder: *tryHarder})
	results := benchmark.NewScanner(engine, sources, *workers).
		Run(context.Background(), benchmark.DefaultCases(), *iterations)
	benchmark.PrintResults(os.Stdout, results)

	if *outputFile != "" {
		if err := saveResultsToFile(*outputFile, results); err != nil {
			log.Printf("Failed to save results to file: %v", err)
		} else {
			fmt.Printf("Results saved to: %s\n", *outputFile)
		}
	}
}

// loadFrames loads every supported image in dir, sorted by name.
func loadFrames(dir string) ([]pipeline.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if !e.IsDir() && utils.IsSupportedImage(p) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	sources := make([]pipeline.Source, 0, len(paths))
	for _, l := range utils.BatchLoadImages(paths) {
		if l.Err != nil {
			log.Printf("Skipping %s: %v", l.Path, l.Err)
			continue
		}
		sources = append(sources, pipeline.Source{Name: l.Path, Frame: frame.NewImageFrame(l.Img)})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}
	return sources, nil
}

func saveResultsToFile(filename string, results []benchmark.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o600)
}
