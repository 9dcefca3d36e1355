package scratch14

import (
	_ "embed"
	"log/slog"

	"github.com/specialistvlad/scratchkit/internal/registry"
)

// Name is the format name of Scratch 1.4 projects.
const Name = "scratch14"

//go:embed blocks.hcl
var blocksHCL []byte

// Module implements the registry.Module interface for this package. The
// scratch20 module must be registered first: most blocks here are matched
// to its commands.
type Module struct {
	// Codec reads and writes the .sb object table. Without one the format's
	// vocabulary is still available for conversion.
	Codec Codec
}

// Register registers the format plugin, its block vocabulary and the block
// workarounds between the 1.4 and 2.0 control blocks.
func (m *Module) Register(r *registry.Registry) {
	slog.Debug("Registering Scratch 1.4 format.", "codec", m.Codec != nil)
	r.RegisterFormat(NewPlugin(m.Codec))
	if err := r.RegisterManifest(Name, "scratch14/blocks.hcl", blocksHCL); err != nil {
		panic(err)
	}
	for command, fn := range workarounds {
		if err := r.SetWorkaround(command, fn); err != nil {
			panic(err)
		}
	}
}
