package config

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/orientation"
	"github.com/MeKo-Tech/framescan/internal/pipeline"
	"github.com/MeKo-Tech/framescan/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Positive(t, cfg.Batch.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"output format", func(c *Config) { c.Output.Format = "csv" }, "invalid output format"},
		{"empty output format ok", func(c *Config) { c.Output.Format = "" }, ""},
		{"unknown barcode format", func(c *Config) { c.Scanner.Formats = []string{"qr", "hologram"} }, "invalid scanner formats"},
		{"no barcode format", func(c *Config) { c.Scanner.Formats = nil }, "invalid scanner formats"},
		{"device orientation", func(c *Config) { c.Orientation.Device = "sideways" }, "orientation.device"},
		{"interface orientation", func(c *Config) { c.Orientation.Interface = "diagonal" }, "orientation.interface"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"upload size", func(c *Config) { c.Server.MaxUploadMB = 0 }, "max upload"},
		{"timeout", func(c *Config) { c.Server.TimeoutSec = -1 }, "invalid timeout"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitPerMinute = -1 }, "invalid rate limit"},
		{"negative daily quota", func(c *Config) { c.Server.MaxUploadMBPerDay = -5 }, "invalid rate limit"},
		{"unlimited", func(c *Config) { c.Server.RateLimitPerMinute, c.Server.MaxUploadMBPerDay = 0, 0 }, ""},
		{"workers", func(c *Config) { c.Batch.Workers = 0 }, "batch workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFormatSet(t *testing.T) {
	cfg := DefaultConfig()
	fs, err := cfg.FormatSet()
	require.NoError(t, err)
	assert.Equal(t, barcode.AllFormats(), fs)

	cfg.Scanner.Formats = []string{"qr", "ean13,ean8"}
	fs, err = cfg.FormatSet()
	require.NoError(t, err)
	assert.Equal(t, barcode.NewFormatSet(barcode.FormatQR, barcode.FormatEAN13, barcode.FormatEAN8), fs)

	cfg.Scanner.Formats = []string{}
	_, err = cfg.FormatSet()
	require.ErrorIs(t, err, scanner.ErrMissingFormat)
}

func TestOrientationProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orientation = OrientationConfig{Device: "face_down", Interface: "Landscape Right"}
	p, err := cfg.OrientationProvider()
	require.NoError(t, err)
	assert.Equal(t, orientation.DeviceFaceDown, p.Device())
	assert.Equal(t, orientation.InterfaceLandscapeRight, p.Interface())
	assert.Equal(t, orientation.CorrectionRotate180, orientation.ResolveFrom(p))
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scanner = ScannerConfig{Formats: []string{"codabar", "itf"}, CheckInverted: true, TryHarder: true}
	cfg.Batch.Workers = 5

	assert.Equal(t, barcode.EngineOptions{TryHarder: true}, cfg.ToEngineOptions())
	assert.Equal(t, pipeline.Options{CheckInverted: true}, cfg.ToOptions())
	assert.Equal(t, 5, cfg.ToParallelConfig().MaxWorkers)

	args, err := cfg.ToArgs()
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, []int{8, 128}, args[0])
	assert.Equal(t, pipeline.Options{CheckInverted: true}, pipeline.ParseOptions(args[1]))

	cfg.Scanner.Formats = nil
	_, err = cfg.ToArgs()
	require.Error(t, err)
}

func TestConfigStructTags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scanner.TryHarder = true

	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	var asJSON map[string]any
	require.NoError(t, json.Unmarshal(b, &asJSON))
	assert.Equal(t, true, asJSON["scanner"].(map[string]any)["try_harder"])

	y, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	var back Config
	require.NoError(t, yaml.Unmarshal(y, &back))
	assert.Equal(t, cfg, back)
}
