// Package feature defines the optional capabilities a file format may or may
// not support, and how a project is adapted when a format lacks one.
//
// A Feature is looked up by name. A format plugin lists the names it
// supports; the pipeline runs Normalize for every supported feature and
// Workaround for every other registered feature. New features register
// independently of formats and of the pipeline.
package feature

import "github.com/specialistvlad/scratchkit/internal/model"

// Names of the built-in features.
const (
	VectorImages   = "Vector Images"
	StageVariables = "Stage-specific Variables"
	CloudVariables = "Cloud Variables"
	CustomBlocks   = "Custom Blocks"
)

// Feature is a named capability.
type Feature interface {
	Name() string
	Description() string
	// Workaround lists one Fix per object that uses the feature. It must not
	// change the project; the caller applies the fixes.
	Workaround(p *model.Project) []Fix
	// Normalize adjusts a project to the representation conventions of a
	// format that supports the feature. It must be idempotent.
	Normalize(p *model.Project) error
}

// Fix is a pending change to one object.
type Fix struct {
	// Object is what the fix changes; it becomes the Object of the notice.
	Object any
	// Detail explains the change to the user.
	Detail string
	// Apply performs the change in place.
	Apply func() error
}
