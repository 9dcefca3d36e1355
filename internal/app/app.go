package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Log records are written to logW. Without explicit modules the built-in
// formats are registered.
//
// New panics when the registry cannot be built, since that is a mismatch
// between the compiled modules and the manifests they load.
func New(logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Register(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	for _, name := range sortedFormats(cfg.Manifests) {
		if err := reg.LoadManifestsRecursively(ctx, name, cfg.Manifests[name]); err != nil {
			panic(fmt.Errorf("failed to load block manifests for %s: %w", name, err))
		}
	}

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "formats", len(reg.Formats()), "blocks", len(reg.BlockTypes()))

	return &App{
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// context attaches the application logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func sortedFormats(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetOutputDir changes where ConvertDir writes its results.
func (a *App) SetOutputDir(dir string) {
	a.config.OutputDir = dir
}
