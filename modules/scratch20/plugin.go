package scratch20

import (
	"archive/zip"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/specialistvlad/scratchkit/internal/ctxlog"
	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// projectEntry is the archive member holding the project document.
const projectEntry = "project.json"

//go:embed schema.json
var schemaJSON string

var projectSchema = jsonschema.MustCompileString("scratch20/schema.json", schemaJSON)

// Vocabulary is the part of the registry the plugin needs to map commands to
// block types and back.
type Vocabulary interface {
	ResolveCommand(formatName, command string) (*model.BlockType, error)
	Convert(bt *model.BlockType, formatName string) (*model.PluginBlockType, error)
}

// Plugin reads and writes Scratch 2.0 .sb2 archives: a zip holding
// project.json plus one member per costume and sound.
type Plugin struct {
	vocab Vocabulary
}

// NewPlugin creates a plugin resolving blocks through vocab.
func NewPlugin(vocab Vocabulary) *Plugin {
	return &Plugin{vocab: vocab}
}

func (p *Plugin) Name() string        { return Name }
func (p *Plugin) DisplayName() string { return "Scratch 2.0" }
func (p *Plugin) Extension() string   { return ".sb2" }

func (p *Plugin) Features() []string {
	return []string{feature.VectorImages, feature.CloudVariables, feature.CustomBlocks}
}

// Load reads an .sb2 archive. project.json is checked against the schema
// before it is decoded.
func (p *Plugin) Load(ctx context.Context, r io.Reader) (*model.Project, error) {
	logger := ctxlog.FromContext(ctx).With("format", Name)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	f, ok := files[projectEntry]
	if !ok {
		return nil, fmt.Errorf("archive has no %s", projectEntry)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", projectEntry, err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", projectEntry, err)
	}

	if err := Validate(raw); err != nil {
		return nil, err
	}
	var doc projectJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", projectEntry, err)
	}

	d := &decoder{vocab: p.vocab, files: files}
	project, err := d.decode(&doc)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded project.", "sprites", len(project.Sprites), "members", len(files))
	return project, nil
}

// Save writes p as an .sb2 archive. Equal assets are stored once.
func (p *Plugin) Save(ctx context.Context, w io.Writer, project *model.Project) error {
	logger := ctxlog.FromContext(ctx).With("format", Name)

	e := newEncoder(p.vocab)
	doc, err := e.encode(project)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", projectEntry, err)
	}

	zw := zip.NewWriter(w)
	if err := writeMember(zw, projectEntry, raw); err != nil {
		return err
	}
	for _, entry := range append(e.images.Entries(), e.sounds.Entries()...) {
		data, err := entry.Asset.Bytes()
		if err != nil {
			return fmt.Errorf("asset %s: %w", entry.Name(), err)
		}
		if err := writeMember(zw, entry.Name(), data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	logger.Debug("Saved project.", "images", e.images.Len(), "sounds", e.sounds.Len())
	return nil
}

func writeMember(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add '%s' to archive: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write '%s': %w", name, err)
	}
	return nil
}

// ValidationError reports the first place where project.json breaks the
// schema.
type ValidationError struct {
	// Path is a JSON pointer into the document.
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("invalid %s at %s: %s", projectEntry, path, e.Message)
}

// Validate checks a project.json document against the schema.
func Validate(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", projectEntry, err)
	}
	err := projectSchema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}
	return firstCause(ve)
}

// firstCause descends to the first leaf of a schema error tree, which names
// the innermost failing value.
func firstCause(ve *jsonschema.ValidationError) *ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{Path: ve.InstanceLocation, Message: strings.TrimSpace(ve.Message)}
}
