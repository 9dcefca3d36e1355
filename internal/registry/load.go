package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/fsutil"
	"github.com/specialistvlad/scratchkit/internal/manifest"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// RegisterManifest registers every block declared in an HCL manifest held in
// memory, typically one embedded by a format module.
func (r *Registry) RegisterManifest(formatName, filename string, src []byte) error {
	types, err := manifest.Parse(filename, src)
	if err != nil {
		return fmt.Errorf("failed to parse block manifest %s: %w", filename, err)
	}
	return r.registerAll(formatName, types)
}

// LoadManifestsRecursively registers the blocks of every .hcl file below
// path for the named format. It lets users extend a format's vocabulary
// without recompiling.
func (r *Registry) LoadManifestsRecursively(ctx context.Context, formatName, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading block manifests...", "format", formatName, "path", path)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		logger.Error("Failed to walk manifests directory", "path", path, "error", err)
		return err
	}

	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found in path", "path", path)
		return nil
	}

	for _, filePath := range filePaths {
		types, err := manifest.ParseFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to parse block manifest %s: %w", filePath, err)
		}
		if err := r.registerAll(formatName, types); err != nil {
			return fmt.Errorf("failed to register blocks from %s: %w", filePath, err)
		}
		logger.Debug("Successfully loaded block manifest", "file", filePath, "blocks", len(types))
	}

	logger.Info("Block manifests loaded.", "format", formatName, "files", len(filePaths))
	return nil
}

func (r *Registry) registerAll(formatName string, types []*model.PluginBlockType) error {
	for _, pbt := range types {
		if _, err := r.RegisterBlockType(formatName, pbt); err != nil {
			return err
		}
	}
	return nil
}
