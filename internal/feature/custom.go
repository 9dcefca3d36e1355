package feature

import "github.com/specialistvlad/scratchkit/internal/model"

// Custom is the "Custom Blocks" feature. There is no workaround: a format
// without it cannot hold a project that defines blocks, and the pipeline
// fails with model.BlockNotSupportedError instead.
type Custom struct{}

func (Custom) Name() string { return CustomBlocks }

func (Custom) Description() string {
	return "Scripts may define and call their own blocks."
}

func (Custom) Workaround(*model.Project) []Fix { return nil }

func (Custom) Normalize(*model.Project) error { return nil }
