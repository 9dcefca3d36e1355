package snapshot

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
)

type encoder struct {
	vocab   Vocabulary
	customs map[*model.CustomBlockType]int
	table   []customDoc
}

func (e *encoder) encode(p *model.Project) (*payload, error) {
	e.customs = map[*model.CustomBlockType]int{}
	doc := &payload{
		Schema: schemaVersion,
		Name:   p.Name,
		Author: p.Author,
		Notes:  p.Notes,
		Tempo:  p.Tempo,
	}
	var err error
	if doc.Globals, err = e.scope(&p.VarScope); err != nil {
		return nil, err
	}
	if doc.Stage, err = e.scriptable(p.Stage); err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	for _, s := range p.Sprites {
		sd, err := e.scriptable(s)
		if err != nil {
			return nil, fmt.Errorf("sprite %q: %w", s.Name, err)
		}
		doc.Sprites = append(doc.Sprites, spriteDoc{
			Name:          s.Name,
			Scriptable:    sd,
			X:             s.Position.X,
			Y:             s.Position.Y,
			Direction:     s.Direction,
			RotationStyle: s.RotationStyle,
			Size:          s.Size,
			Draggable:     s.Draggable,
			Visible:       s.Visible,
		})
	}
	for _, a := range p.Actors {
		switch a := a.(type) {
		case *model.Sprite:
			doc.Actors = append(doc.Actors, actorDoc{Sprite: a.Name})
		case *model.Watcher:
			wd, err := e.watcher(a)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", a, err)
			}
			doc.Actors = append(doc.Actors, actorDoc{Watcher: wd})
		}
	}
	if p.Thumbnail != nil {
		img, err := image(p.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("thumbnail: %w", err)
		}
		doc.Thumbnail = &img
	}
	doc.Customs = e.table
	return doc, nil
}

func (e *encoder) scope(v *model.VarScope) (scopeDoc, error) {
	var out scopeDoc
	for _, name := range sortedKeys(v.Variables) {
		variable := v.Variables[name]
		value, err := e.value(variable.Value)
		if err != nil {
			return out, fmt.Errorf("variable %q: %w", name, err)
		}
		out.Variables = append(out.Variables, variableDoc{Name: name, Value: value, Cloud: variable.IsCloud})
	}
	for _, name := range sortedKeys(v.Lists) {
		l := v.Lists[name]
		out.Lists = append(out.Lists, listDoc{Name: name, Items: slices.Clone(l.Items), Cloud: l.IsCloud})
	}
	return out, nil
}

func (e *encoder) scriptable(s model.Scriptable) (scriptableDoc, error) {
	base := s.Base()
	scope, err := e.scope(&base.VarScope)
	if err != nil {
		return scriptableDoc{}, err
	}
	out := scriptableDoc{Scope: scope, Costume: base.CostumeIndex(), Volume: base.Volume}

	for _, script := range base.Scripts {
		blocks, err := e.stack(script.Blocks)
		if err != nil {
			return out, err
		}
		out.Scripts = append(out.Scripts, scriptDoc{Pos: point(script.Pos), Blocks: blocks})
	}
	for _, c := range base.Comments {
		out.Comments = append(out.Comments, commentDoc{Text: c.Text, Pos: point(c.Pos)})
	}
	for _, c := range base.Costumes {
		img, err := image(c.Image)
		if err != nil {
			return out, fmt.Errorf("costume %q: %w", c.Name, err)
		}
		out.Costumes = append(out.Costumes, costumeDoc{
			Name:    c.Name,
			Image:   img,
			CenterX: c.RotationCenter.X,
			CenterY: c.RotationCenter.Y,
		})
	}
	for _, snd := range base.Sounds {
		data, err := snd.Waveform.Bytes()
		if err != nil {
			return out, fmt.Errorf("sound %q: %w", snd.Name, err)
		}
		out.Sounds = append(out.Sounds, soundDoc{Name: snd.Name, Data: data})
	}
	return out, nil
}

func image(img *media.Image) (imageDoc, error) {
	data, err := img.Bytes()
	if err != nil {
		return imageDoc{}, err
	}
	return imageDoc{Format: img.Format(), Data: data}, nil
}

func point(p *model.Point) *pointDoc {
	if p == nil {
		return nil
	}
	return &pointDoc{X: p.X, Y: p.Y}
}

func (e *encoder) stack(blocks []*model.Block) ([]blockDoc, error) {
	out := make([]blockDoc, 0, len(blocks))
	for _, b := range blocks {
		bd, err := e.block(b)
		if err != nil {
			return nil, err
		}
		out = append(out, *bd)
	}
	return out, nil
}

func (e *encoder) block(b *model.Block) (*blockDoc, error) {
	out := &blockDoc{Comment: b.Comment}
	switch t := b.Type.(type) {
	case *model.BlockType:
		pbt, err := e.vocab.Convert(t, Name)
		if err != nil {
			return nil, err
		}
		out.Command = pbt.Command
	case *model.CustomBlockType:
		n, err := e.custom(t)
		if err != nil {
			return nil, err
		}
		out.Custom = n + 1
	default:
		return nil, fmt.Errorf("cannot encode block of type %T", b.Type)
	}
	for n, arg := range b.Args {
		v, err := e.value(arg)
		if err != nil {
			return nil, fmt.Errorf("block %q argument %d: %w", b.Command(), n, err)
		}
		out.Args = append(out.Args, v)
	}
	return out, nil
}

// custom returns the table index of t, adding it on first use.
func (e *encoder) custom(t *model.CustomBlockType) (int, error) {
	if n, ok := e.customs[t]; ok {
		return n, nil
	}
	n := len(e.table)
	e.customs[t] = n
	e.table = append(e.table, customDoc{})

	doc := customDoc{Shape: string(t.Shape()), Atomic: t.Atomic}
	for _, p := range t.Parts() {
		if p.Insert == nil {
			doc.Parts = append(doc.Parts, partDoc{Text: p.Text})
			continue
		}
		def, err := e.value(p.Insert.Default)
		if err != nil {
			return 0, fmt.Errorf("insert %q default: %w", p.Insert.Name, err)
		}
		doc.Parts = append(doc.Parts, partDoc{Insert: &insertDoc{
			Shape:       string(p.Insert.Shape),
			Kind:        p.Insert.Kind,
			Default:     def,
			Unevaluated: p.Insert.Unevaluated,
			Name:        p.Insert.Name,
		}})
	}
	e.table[n] = doc
	return n, nil
}

func (e *encoder) value(v any) (valueDoc, error) {
	switch v := v.(type) {
	case nil:
		return valueDoc{Kind: kindNil}, nil
	case int:
		return valueDoc{Kind: kindInt, Int: int64(v)}, nil
	case float64:
		return valueDoc{Kind: kindFloat, Float: v}, nil
	case string:
		return valueDoc{Kind: kindString, String: v}, nil
	case bool:
		return valueDoc{Kind: kindBool, Bool: v}, nil
	case model.Color:
		return valueDoc{Kind: kindColor, Int: int64(v.RGB())}, nil
	case *model.Block:
		b, err := e.block(v)
		if err != nil {
			return valueDoc{}, err
		}
		return valueDoc{Kind: kindBlock, Block: b}, nil
	case []*model.Block:
		stack, err := e.stack(v)
		if err != nil {
			return valueDoc{}, err
		}
		return valueDoc{Kind: kindStack, Stack: stack}, nil
	case *model.CustomBlockType:
		n, err := e.custom(v)
		if err != nil {
			return valueDoc{}, err
		}
		return valueDoc{Kind: kindCustom, Custom: n}, nil
	}
	return valueDoc{}, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func (e *encoder) watcher(w *model.Watcher) (*watcherDoc, error) {
	var target targetDoc
	switch t := w.Target.(type) {
	case *model.Project:
		target.Kind = targetProject
	case *model.Stage:
		target.Kind = targetStage
	case *model.Sprite:
		target = targetDoc{Kind: targetSprite, Sprite: t.Name}
	default:
		return nil, fmt.Errorf("watcher has no target")
	}
	b, err := e.block(w.Block)
	if err != nil {
		return nil, err
	}
	return &watcherDoc{
		Target:    target,
		Block:     *b,
		Style:     w.Style,
		Pos:       point(w.Pos),
		Visible:   w.Visible,
		SliderMin: w.SliderMin,
		SliderMax: w.SliderMax,
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
