package pipeline

import (
	"fmt"

	"github.com/specialistvlad/scratchkit/internal/model"
)

// applyWorkarounds runs the workaround of every registered feature the
// active format does not declare. Each feature's fixes are listed in full
// before the first one is applied.
func (n *normalizer) applyWorkarounds() error {
	for _, f := range n.registry.Features() {
		if n.supports(f.Name()) {
			continue
		}
		fixes := f.Workaround(n.project)
		for _, fix := range fixes {
			if err := fix.Apply(); err != nil {
				return fmt.Errorf("%s workaround for %v: %w", f.Name(), fix.Object, err)
			}
			n.notices = append(n.notices, model.Notice{Feature: f.Name(), Object: fix.Object, Detail: fix.Detail})
		}
	}
	return nil
}

// applyNormalization runs the normalizer of every feature the active format
// declares.
func (n *normalizer) applyNormalization() error {
	for _, name := range n.plugin.Features() {
		f, ok := n.registry.Feature(name)
		if !ok {
			continue
		}
		if err := f.Normalize(n.project); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
