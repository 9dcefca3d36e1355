// Package format defines the contract between the conversion engine and the
// byte-level readers and writers of concrete project file formats.
package format

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/scratchkit/internal/model"
)

// ErrCodecUnavailable is returned by plugins whose vocabulary is registered
// but whose byte codec was not supplied.
var ErrCodecUnavailable = errors.New("format codec is not available")

// Plugin reads and writes one file format.
type Plugin interface {
	// Name is the stable identifier, e.g. "scratch20".
	Name() string
	// DisplayName is shown to users, e.g. "Scratch 2.0".
	DisplayName() string
	// Extension includes the dot, e.g. ".sb2".
	Extension() string
	// Features lists the names of the features the format supports.
	Features() []string
	// Load reads a project. The returned project has Format set to Name()
	// and has not been normalized.
	Load(ctx context.Context, r io.Reader) (*model.Project, error)
	// Save writes a project that has already been normalized for this format.
	Save(ctx context.Context, w io.Writer, p *model.Project) error
}

// Parser is the text grammar collaborator. It consumes the output of
// Script.Stringify in model.TextStyle.
type Parser = model.TextParser
