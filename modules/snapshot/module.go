package snapshot

import (
	"log/slog"

	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/registry"
)

// Name is the format name of snapshots.
const Name = "snapshot"

// Module implements the registry.Module interface for this package. It
// gives the snapshot format a spelling for every canonical block type
// registered before it, so it must come after the other format modules.
type Module struct{}

// Register registers the format plugin and mirrors the existing vocabulary.
func (m *Module) Register(r *registry.Registry) {
	slog.Debug("Registering snapshot format.")
	r.RegisterFormat(NewPlugin(r))

	for _, bt := range r.BlockTypes() {
		def := bt.Default()
		// Types whose default command was taken by another type cannot be
		// addressed by command, so they stay unmirrored.
		if owner, err := r.ResolveBlockType(def.Command); err != nil || owner != bt {
			slog.Warn("Block type not mirrored by snapshot format.", "command", def.Command, "format", def.Format)
			continue
		}
		pbt := model.NewPluginBlockType(def.Category, def.Shape(), def.Command, def.Parts())
		pbt.Match = def.Command
		if _, err := r.RegisterBlockType(Name, pbt); err != nil {
			panic(err)
		}
	}
}
