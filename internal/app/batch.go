package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/scratchkit/internal/fsutil"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// Result is the outcome of converting one file in ConvertDir.
type Result struct {
	Source  string
	Target  string
	Notices []model.Notice
	// Err is set when this file failed. Other files are still converted.
	Err error
}

// ConvertDir converts every project file below dir to the named format.
// Files already in that format are skipped. Outputs go next to their source
// unless Config.OutputDir is set, in which case the directory layout below
// dir is kept there.
//
// Up to Config.Workers files are converted at once. Results are in file
// order. The returned error is only set when the directory cannot be read
// or ctx is cancelled; per-file failures are reported in the results.
func (a *App) ConvertDir(ctx context.Context, dir, formatName string) ([]Result, error) {
	target, err := a.registry.Format(formatName)
	if err != nil {
		return nil, err
	}

	var extensions []string
	for _, plugin := range a.registry.Formats() {
		if plugin.Name() != target.Name() {
			extensions = append(extensions, plugin.Extension())
		}
	}
	if len(extensions) == 0 {
		return nil, nil
	}
	files, err := fsutil.FindFilesByExtension(dir, extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan '%s': %w", dir, err)
	}
	a.logger.Info("Converting directory.", "dir", dir, "format", formatName, "files", len(files), "workers", a.config.Workers)

	results := make([]Result, len(files))
	if len(files) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(a.config.Workers, len(files)))
	for i, src := range files {
		dst, err := a.outputPath(dir, src, target.Extension())
		if err != nil {
			results[i] = Result{Source: src, Err: err}
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			notices, err := a.Convert(gctx, src, dst)
			results[i] = Result{Source: src, Target: dst, Notices: notices, Err: err}
			if err != nil {
				a.logger.Warn("Conversion failed.", "path", src, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (a *App) outputPath(root, src, ext string) (string, error) {
	base := strings.TrimSuffix(src, filepath.Ext(src)) + ext
	if a.config.OutputDir == "" {
		return base, nil
	}
	rel, err := filepath.Rel(root, base)
	if err != nil {
		return "", fmt.Errorf("failed to place output of '%s': %w", src, err)
	}
	return filepath.Join(a.config.OutputDir, rel), nil
}
