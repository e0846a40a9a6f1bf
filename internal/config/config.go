// Package config provides configuration structures and defaults for XDR Analyzer
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`  // Series extraction settings
	Live    LiveConfig    `yaml:"live"`    // Live-follow settings
	Export  ExportConfig  `yaml:"export"`  // CSV export settings
	Logging LoggingConfig `yaml:"logging"` // Logging configuration
}

// ViewerConfig controls how series are extracted for display and analysis
type ViewerConfig struct {
	PointCeiling int `yaml:"point_ceiling"` // Maximum points per extracted series; stride is derived from this
}

// LiveConfig controls how an in-progress recording is followed
type LiveConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"` // Fallback poll interval when no write events arrive
}

// ExportConfig contains CSV export configuration parameters
type ExportConfig struct {
	OutputDir  string `yaml:"output_dir"`  // Output directory when no explicit export path is given
	FilePrefix string `yaml:"file_prefix"` // Prefix for generated export filenames
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `yaml:"level"` // Log level (debug, info, warn, error)
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Viewer: ViewerConfig{
			PointCeiling: 5000, // Keep plots responsive on long recordings
		},
		Live: LiveConfig{
			PollInterval: 500 * time.Millisecond, // Matches the refresh rate of the desktop viewer
		},
		Export: ExportConfig{
			OutputDir:  ".",   // Current directory
			FilePrefix: "xdr", // File prefix for export files
		},
		Logging: LoggingConfig{
			Level: "info", // Info level logging
		},
	}
}
