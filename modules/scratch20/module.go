package scratch20

import (
	_ "embed"
	"log/slog"

	"github.com/specialistvlad/scratchkit/internal/registry"
)

// Name is the format name of Scratch 2.0 projects.
const Name = "scratch20"

//go:embed blocks.hcl
var blocksHCL []byte

// Module implements the registry.Module interface for this package. It must
// be registered before the other format modules, which alias their blocks to
// the commands declared here.
type Module struct{}

// Register registers the format plugin and its block vocabulary.
func (m *Module) Register(r *registry.Registry) {
	slog.Debug("Registering Scratch 2.0 format.")
	r.RegisterFormat(NewPlugin(r))
	if err := r.RegisterManifest(Name, "scratch20/blocks.hcl", blocksHCL); err != nil {
		panic(err)
	}
}
