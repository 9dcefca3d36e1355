package compat

import (
	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/registry"
)

// Module implements the registry.Module interface for this package. It
// registers the built-in features; format modules only refer to them by name.
type Module struct{}

// Register registers the features with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFeature(feature.Vector{})
	r.RegisterFeature(feature.StageVars{})
	r.RegisterFeature(feature.Cloud{})
	r.RegisterFeature(feature.Custom{})
}
