//nolint:lll
package config

// Config represents the complete configuration for the framescan application.
// It covers every command (scan, pdf, serve) and is loaded from configuration
// files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Barcode scanner settings
	Scanner ScannerConfig `mapstructure:"scanner" yaml:"scanner" json:"scanner"`

	// Orientation signal used when a host cannot report one per frame
	Orientation OrientationConfig `mapstructure:"orientation" yaml:"orientation" json:"orientation"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch scanning
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ScannerConfig selects the barcode formats and scan passes.
type ScannerConfig struct {
	// Formats are format names ("qr", "ean13", ...) or "all".
	Formats       []string `mapstructure:"formats" yaml:"formats" json:"formats"`
	CheckInverted bool     `mapstructure:"check_inverted" yaml:"check_inverted" json:"check_inverted"`
	TryHarder     bool     `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
}

// OrientationConfig is a static orientation signal.
type OrientationConfig struct {
	Device    string `mapstructure:"device" yaml:"device" json:"device"`
	Interface string `mapstructure:"interface" yaml:"interface" json:"interface"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	File         string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir   string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayColor string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Per-client upload limits; 0 disables the limit.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
	MaxUploadMBPerDay  int `mapstructure:"max_upload_mb_per_day" yaml:"max_upload_mb_per_day" json:"max_upload_mb_per_day"`
}

// BatchConfig contains batch scanning settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
