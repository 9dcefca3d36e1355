package scratch14

import "github.com/specialistvlad/scratchkit/internal/model"

// Arguments of the 2.0 "stop" block that 1.4 has a block of its own for.
const (
	stopAllOption    = "all"
	stopScriptOption = "this script"
)

// workarounds rewrite the control blocks that only one of 1.4 and 2.0 has.
// They are keyed by the command owning the canonical type.
var workarounds = map[string]model.BlockWorkaround{
	"stopScripts": stopScripts,
	"stopAll":     stopAll,
	"doReturn":    doReturn,
	"doForeverIf": foreverIf,
}

// stopScripts maps "stop all" and "stop this script" to their 1.4 blocks.
// The other options have no equivalent.
func stopScripts(r model.Resolver, b *model.Block) (*model.Block, error) {
	switch b.Arg(0) {
	case stopAllOption:
		return model.NewBlock(r, "stopAll")
	case stopScriptOption:
		return model.NewBlock(r, "doReturn")
	}
	return nil, nil
}

func stopAll(r model.Resolver, _ *model.Block) (*model.Block, error) {
	return model.NewBlock(r, "stopScripts", stopAllOption)
}

func doReturn(r model.Resolver, _ *model.Block) (*model.Block, error) {
	return model.NewBlock(r, "stopScripts", stopScriptOption)
}

// foreverIf rewrites "forever if <cond>" as "forever { if <cond> }".
func foreverIf(r model.Resolver, b *model.Block) (*model.Block, error) {
	doIf, err := model.NewBlock(r, "doIf", b.Arg(0), b.Arg(1))
	if err != nil {
		return nil, err
	}
	return model.NewBlock(r, "doForever", []*model.Block{doIf})
}
