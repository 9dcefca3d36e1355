package app

import (
	"fmt"
	"runtime"
	"slices"
)

// Accepted values of Config.LogLevel and Config.LogFormat.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LogFormat string
	LogLevel  string
	// Workers bounds the number of projects ConvertDir handles at once.
	Workers int
	// OutputDir receives converted files. Empty means next to the source.
	OutputDir string
	// Manifests maps a format name to a directory of extra block manifests.
	Manifests map[string]string
}

// DefaultConfig is the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LogFormat: "text",
		LogLevel:  "info",
		Workers:   runtime.NumCPU(),
	}
}

func NewConfig(cfg Config) (*Config, error) {
	if !slices.Contains(LogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level '%s': must be one of %v", cfg.LogLevel, LogLevels)
	}
	if !slices.Contains(LogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format '%s': must be one of %v", cfg.LogFormat, LogFormats)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	return &cfg, nil
}
