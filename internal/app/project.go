package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/scratchkit/internal/format"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/pipeline"
)

// FormatFor returns the plugin handling files like path, chosen by extension.
func (a *App) FormatFor(path string) (format.Plugin, error) {
	return a.registry.FormatByExtension(filepath.Ext(path))
}

// Load reads and normalizes the project at path. The project's name defaults
// to the file name without its extension.
func (a *App) Load(ctx context.Context, path string) (*model.Project, []model.Notice, error) {
	ctx = a.context(ctx)
	plugin, err := a.FormatFor(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open project: %w", err)
	}
	defer f.Close()

	p, err := plugin.Load(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load '%s': %w", path, err)
	}
	p.Path = path
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	notices, err := pipeline.Normalize(ctx, p, a.registry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to normalize '%s': %w", path, err)
	}
	a.logger.Info("Project loaded.", "path", path, "format", p.Format, "sprites", len(p.Sprites), "notices", len(notices))
	return p, notices, nil
}

// Save converts p to the format chosen by path's extension and writes it.
// The project is changed in place. A failed save leaves no file behind.
func (a *App) Save(ctx context.Context, p *model.Project, path string) (notices []model.Notice, err error) {
	ctx = a.context(ctx)
	plugin, err := a.FormatFor(path)
	if err != nil {
		return nil, err
	}

	notices, err = pipeline.Convert(ctx, p, a.registry, plugin.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to convert '%s' to %s: %w", p.Name, plugin.Name(), err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create '%s': %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close '%s': %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := plugin.Save(ctx, f, p); err != nil {
		return nil, fmt.Errorf("failed to save '%s': %w", path, err)
	}
	a.logger.Info("Project saved.", "path", path, "format", plugin.Name(), "notices", len(notices))
	return notices, nil
}

// Convert loads src and saves it as dst. The notices of both steps are
// returned together.
func (a *App) Convert(ctx context.Context, src, dst string) ([]model.Notice, error) {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil, errors.New("source and destination are the same file")
	}
	p, loadNotices, err := a.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	saveNotices, err := a.Save(ctx, p, dst)
	if err != nil {
		return nil, err
	}
	return append(loadNotices, saveNotices...), nil
}
