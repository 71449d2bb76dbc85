package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Scanner: ScannerConfig{
			Formats:       []string{"all"},
			CheckInverted: false,
			TryHarder:     false,
		},
		Orientation: OrientationConfig{
			Device:    "portrait",
			Interface: "unavailable",
		},
		Output: OutputConfig{
			Format:       pipeline.OutputJSON,
			OverlayColor: "#FF0000",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers:         runtime.NumCPU(),
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{pipeline.OutputJSON, pipeline.OutputYAML, pipeline.OutputText}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if _, err := c.FormatSet(); err != nil {
		return fmt.Errorf("invalid scanner formats: %w", err)
	}
	if _, err := c.OrientationProvider(); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.MaxUploadMBPerDay < 0 {
		return fmt.Errorf("invalid rate limit: %d frames/min, %d MB/day (must not be negative)",
			c.Server.RateLimitPerMinute, c.Server.MaxUploadMBPerDay)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	return nil
}

// FormatSet parses the configured scanner formats.
func (c *Config) FormatSet() (barcode.FormatSet, error) {
	return scanner.ParseFormatNames(c.Scanner.Formats)
}

// OrientationProvider returns the configured static orientation signal.
func (c *Config) OrientationProvider() (orientation.StaticProvider, error) {
	d, err := orientation.ParseDevice(c.Orientation.Device)
	if err != nil {
		return orientation.StaticProvider{}, fmt.Errorf("invalid orientation.device: %w", err)
	}
	i, err := orientation.ParseInterface(c.Orientation.Interface)
	if err != nil {
		return orientation.StaticProvider{}, fmt.Errorf("invalid orientation.interface: %w", err)
	}
	return orientation.StaticProvider{DeviceOrientation: d, InterfaceOrientation: i}, nil
}

// ToEngineOptions converts the scanner settings to detection engine options.
func (c *Config) ToEngineOptions() barcode.EngineOptions {
	return barcode.EngineOptions{TryHarder: c.Scanner.TryHarder}
}

// ToOptions converts the scanner settings to per-frame options.
func (c *Config) ToOptions() pipeline.Options {
	return pipeline.Options{CheckInverted: c.Scanner.CheckInverted}
}

// ToArgs builds the positional per-frame arguments from the scanner settings.
func (c *Config) ToArgs() ([]any, error) {
	fs, err := c.FormatSet()
	if err != nil {
		return nil, err
	}
	return pipeline.Args(fs, c.ToOptions()), nil
}

// ToParallelConfig converts to pipeline.ParallelConfig.
func (c *Config) ToParallelConfig() pipeline.ParallelConfig {
	return pipeline.ParallelConfig{MaxWorkers: c.Batch.Workers}
}
