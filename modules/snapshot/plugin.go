package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/vmihailenco/msgpack/v5"
)

// Vocabulary is the part of the registry the plugin needs to map commands to
// block types and back.
type Vocabulary interface {
	ResolveCommand(formatName, command string) (*model.BlockType, error)
	Convert(bt *model.BlockType, formatName string) (*model.PluginBlockType, error)
}

// Plugin stores a project losslessly as a single msgpack document. It
// supports every feature, so converting to it never changes a project
// beyond what normalization does.
type Plugin struct {
	vocab Vocabulary
}

// NewPlugin creates a plugin resolving blocks through vocab.
func NewPlugin(vocab Vocabulary) *Plugin {
	return &Plugin{vocab: vocab}
}

func (p *Plugin) Name() string        { return Name }
func (p *Plugin) DisplayName() string { return "Scratchkit snapshot" }
func (p *Plugin) Extension() string   { return ".sksnap" }

func (p *Plugin) Features() []string {
	return []string{feature.VectorImages, feature.StageVariables, feature.CloudVariables, feature.CustomBlocks}
}

// Load reads a snapshot.
func (p *Plugin) Load(ctx context.Context, r io.Reader) (*model.Project, error) {
	var doc payload
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	d := &decoder{vocab: p.vocab}
	project, err := d.decode(&doc)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loaded project.", "format", Name, "sprites", len(project.Sprites), "customs", len(doc.Customs))
	return project, nil
}

// Save writes p as a snapshot.
func (p *Plugin) Save(ctx context.Context, w io.Writer, project *model.Project) error {
	e := &encoder{vocab: p.vocab}
	doc, err := e.encode(project)
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Saved project.", "format", Name, "sprites", len(doc.Sprites), "customs", len(doc.Customs))
	return nil
}
