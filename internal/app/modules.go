package app

import (
	"github.com/specialistvlad/scratchkit/internal/registry"
	"github.com/specialistvlad/scratchkit/modules/compat"
	"github.com/specialistvlad/scratchkit/modules/scratch14"
	"github.com/specialistvlad/scratchkit/modules/scratch20"
	"github.com/specialistvlad/scratchkit/modules/snapshot"
)

// coreModules is the definitive list of all modules that are compiled into
// the scratchkit binary. Order matters: compat declares the features,
// scratch14 matches the 2.0 vocabulary and snapshot mirrors everything
// registered before it.
var coreModules = []registry.Module{
	&compat.Module{},
	&scratch20.Module{},
	&scratch14.Module{},
	&snapshot.Module{},
}
