package registry

import (
	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/format"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// Module is the interface that all format and feature modules must implement
// to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the formats, features and block types of a single
// application instance.
type Registry struct {
	formats     []format.Plugin
	formatNames map[string]format.Plugin

	features     []feature.Feature
	featureNames map[string]feature.Feature

	blockTypes []*model.BlockType
	// byCommand maps every spelling to the first canonical type that used it.
	byCommand map[string]*model.BlockType
	// byFormatCommand maps format -> command -> canonical type.
	byFormatCommand map[string]map[string]*model.BlockType
	// byText maps stripped text to canonical types in registration order.
	byText map[string][]*model.BlockType

	// configErrs collects registration failures for Validate.
	configErrs []error
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		formatNames:     make(map[string]format.Plugin),
		featureNames:    make(map[string]feature.Feature),
		byCommand:       make(map[string]*model.BlockType),
		byFormatCommand: make(map[string]map[string]*model.BlockType),
		byText:          make(map[string][]*model.BlockType),
	}
}

// Register registers every module in order.
func (r *Registry) Register(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}
