package pipeline

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// specializeBlocks checks that every block of every script has a spelling in
// the active format. Blocks without one are replaced by their type's
// workaround, if it has one.
func (n *normalizer) specializeBlocks() error {
	for _, s := range n.project.Scriptables() {
		for _, script := range s.Base().Scripts {
			for i, b := range script.Blocks {
				out, err := n.specialize(s, b)
				if err != nil {
					return err
				}
				script.Set(i, out)
			}
		}
	}
	return nil
}

// specialize handles b and then its nested blocks, pre-order, returning the
// block that takes its place.
func (n *normalizer) specialize(s model.Scriptable, b *model.Block) (*model.Block, error) {
	b, err := n.specializeOne(s, b)
	if err != nil {
		return nil, err
	}
	for i, arg := range b.Args {
		switch v := arg.(type) {
		case *model.Block:
			child, err := n.specialize(s, v)
			if err != nil {
				return nil, err
			}
			b.Args[i] = child
		case []*model.Block:
			for j, c := range v {
				child, err := n.specialize(s, c)
				if err != nil {
					return nil, err
				}
				v[j] = child
			}
		}
	}
	return b, nil
}

func (n *normalizer) specializeOne(s model.Scriptable, b *model.Block) (*model.Block, error) {
	if usesCustomBlocks(b) && !n.supports(feature.CustomBlocks) {
		return nil, &model.BlockNotSupportedError{
			Type:       b.Type,
			Block:      b,
			Scriptable: s,
			Format:     n.plugin.Name(),
			Reason:     "format does not support " + feature.CustomBlocks,
		}
	}

	bt, ok := b.Type.(*model.BlockType)
	if !ok {
		return b, nil
	}
	err := n.convert(s, b, bt)
	if err == nil {
		return b, nil
	}
	var nse *model.BlockNotSupportedError
	if !errors.As(err, &nse) || bt.Workaround == nil {
		return nil, err
	}

	out, werr := bt.Workaround(n.registry, b)
	if werr != nil {
		return nil, fmt.Errorf("workaround for block %q in %v: %w", b.Command(), s, werr)
	}
	if out == nil {
		return nil, err
	}
	if rbt, ok := out.Type.(*model.BlockType); ok {
		if err := n.convert(s, out, rbt); err != nil {
			return nil, err
		}
	}
	out.Comment = b.Comment
	n.notices = append(n.notices, model.Notice{
		Object: out,
		Detail: fmt.Sprintf("replaced block %q, which format %q cannot express", b.Command(), n.plugin.Name()),
	})
	return out, nil
}

// convert looks up the active format's spelling of bt, annotating a failure
// with the offending block.
func (n *normalizer) convert(s model.Scriptable, b *model.Block, bt *model.BlockType) error {
	_, err := n.registry.Convert(bt, n.plugin.Name())
	var nse *model.BlockNotSupportedError
	if errors.As(err, &nse) {
		return &model.BlockNotSupportedError{
			Type:       bt,
			Block:      b,
			Scriptable: s,
			Format:     n.plugin.Name(),
		}
	}
	return err
}

// usesCustomBlocks reports whether b calls or defines a custom block.
func usesCustomBlocks(b *model.Block) bool {
	if _, ok := b.Type.(*model.CustomBlockType); ok {
		return true
	}
	for _, arg := range b.Args {
		if _, ok := arg.(*model.CustomBlockType); ok {
			return true
		}
	}
	return false
}
