package scratch14

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/format"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// magic starts every .sb file, followed by a two-digit version.
var magic = []byte("ScratchV0")

// Codec converts between the .sb object table and a Project. Decode gets the
// whole file, header included.
type Codec interface {
	Decode(ctx context.Context, r io.Reader) (*model.Project, error)
	Encode(ctx context.Context, w io.Writer, p *model.Project) error
}

// Plugin handles Scratch 1.4 .sb files. The object table is delegated to a
// Codec; the plugin checks the file header and owns the format metadata.
type Plugin struct {
	codec Codec
}

// NewPlugin creates a plugin. codec may be nil.
func NewPlugin(codec Codec) *Plugin {
	return &Plugin{codec: codec}
}

func (p *Plugin) Name() string        { return Name }
func (p *Plugin) DisplayName() string { return "Scratch 1.4" }
func (p *Plugin) Extension() string   { return ".sb" }

func (p *Plugin) Features() []string {
	return []string{feature.StageVariables}
}

// Load reads an .sb file through the codec.
func (p *Plugin) Load(ctx context.Context, r io.Reader) (*model.Project, error) {
	if p.codec == nil {
		return nil, fmt.Errorf("cannot load %s project: %w", Name, format.ErrCodecUnavailable)
	}
	br := bufio.NewReader(r)
	header, err := br.Peek(len(magic) + 1)
	if err != nil || !bytes.HasPrefix(header, magic) {
		return nil, fmt.Errorf("not a Scratch 1.4 project: missing %q header", magic)
	}

	project, err := p.codec.Decode(ctx, br)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s project: %w", Name, err)
	}
	project.Format = Name
	ctxlog.FromContext(ctx).Debug("Loaded project.", "format", Name, "version", string(header[len(magic):]))
	return project, nil
}

// Save writes p through the codec.
func (p *Plugin) Save(ctx context.Context, w io.Writer, project *model.Project) error {
	if p.codec == nil {
		return fmt.Errorf("cannot save %s project: %w", Name, format.ErrCodecUnavailable)
	}
	if err := p.codec.Encode(ctx, w, project); err != nil {
		return fmt.Errorf("failed to encode %s project: %w", Name, err)
	}
	return nil
}
