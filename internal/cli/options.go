package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/scratchkit/internal/app"
	"github.com/specialistvlad/scratchkit/internal/config"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
	manifests  map[string]string
}

func (o *options) register(cmd *cobra.Command) {
	defaults := app.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "Path to a settings file. Defaults to ./"+config.FileName+" when present.")
	flags.StringVar(&o.logLevel, "log-level", defaults.LogLevel, "Set the logging level. Options: "+strings.Join(app.LogLevels, ", ")+".")
	flags.StringVar(&o.logFormat, "log-format", defaults.LogFormat, "Log output format. Options: "+strings.Join(app.LogFormats, ", ")+".")
	flags.IntVar(&o.workers, "workers", defaults.Workers, "Number of projects converted at once.")
	flags.StringToStringVar(&o.manifests, "manifests", nil, "Extra block manifest directories, as format=dir.")
}

// config layers the built-in defaults, the settings file and the flags that
// were set explicitly, in that order.
func (o *options) config(cmd *cobra.Command) (*app.Config, *config.File, error) {
	var (
		file *config.File
		err  error
	)
	if o.configPath != "" {
		file, err = config.Load(o.configPath)
	} else {
		file, err = config.Discover(".")
	}
	if err != nil {
		return nil, nil, usageError(err)
	}

	cfg := app.DefaultConfig()
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		cfg.LogFormat = file.LogFormat
	}
	if file.Workers != 0 {
		cfg.Workers = file.Workers
	}
	cfg.OutputDir = file.OutputDir
	cfg.Manifests = file.Manifests

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("manifests") {
		if cfg.Manifests == nil {
			cfg.Manifests = map[string]string{}
		}
		for name, dir := range o.manifests {
			cfg.Manifests[name] = dir
		}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	out, err := app.NewConfig(cfg)
	if err != nil {
		return nil, nil, usageError(fmt.Errorf("invalid configuration: %w", err))
	}
	return out, file, nil
}
