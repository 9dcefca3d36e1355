package snapshot

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
)

type decoder struct {
	vocab   Vocabulary
	project *model.Project
	customs []*model.CustomBlockType
}

func (d *decoder) decode(doc *payload) (*model.Project, error) {
	if doc.Schema != schemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema %d, want %d", doc.Schema, schemaVersion)
	}
	p := model.NewProject()
	p.Format = Name
	p.Name, p.Author, p.Notes, p.Tempo = doc.Name, doc.Author, doc.Notes, doc.Tempo
	d.project = p

	// Custom types are built before any block so that definitions and calls
	// share them.
	for n, cd := range doc.Customs {
		ct, err := d.custom(cd)
		if err != nil {
			return nil, fmt.Errorf("custom block %d: %w", n, err)
		}
		d.customs = append(d.customs, ct)
	}

	if err := d.scope(&p.VarScope, doc.Globals); err != nil {
		return nil, err
	}
	if err := d.scriptable(p.Stage, doc.Stage); err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	for _, sd := range doc.Sprites {
		if p.Sprite(sd.Name) != nil {
			return nil, &model.StructuralInvariantError{Reason: fmt.Sprintf("sprite name %q is not unique", sd.Name)}
		}
		s := model.NewSprite(p, sd.Name)
		s.Position = model.Point{X: sd.X, Y: sd.Y}
		s.Direction = sd.Direction
		s.RotationStyle = sd.RotationStyle
		s.Size = sd.Size
		s.Draggable = sd.Draggable
		s.Visible = sd.Visible
		if err := d.scriptable(s, sd.Scriptable); err != nil {
			return nil, fmt.Errorf("sprite %q: %w", sd.Name, err)
		}
		p.Sprites = append(p.Sprites, s)
	}

	for n, ad := range doc.Actors {
		if ad.Watcher == nil {
			s := p.Sprite(ad.Sprite)
			if s == nil {
				return nil, fmt.Errorf("actor %d: sprite %q does not exist", n, ad.Sprite)
			}
			p.Actors = append(p.Actors, s)
			continue
		}
		w, err := d.watcher(ad.Watcher)
		if err != nil {
			return nil, fmt.Errorf("actor %d: %w", n, err)
		}
		p.AddWatcher(w)
	}

	if doc.Thumbnail != nil {
		p.Thumbnail = media.NewImage(doc.Thumbnail.Data, doc.Thumbnail.Format)
	}
	return p, nil
}

func (d *decoder) custom(cd customDoc) (*model.CustomBlockType, error) {
	parts := make([]model.Part, 0, len(cd.Parts))
	for _, pd := range cd.Parts {
		if pd.Insert == nil {
			parts = append(parts, model.TextPart(pd.Text))
			continue
		}
		def, err := d.value(pd.Insert.Default)
		if err != nil {
			return nil, err
		}
		ins := model.NewInsert(model.InsertShape(pd.Insert.Shape), pd.Insert.Kind, def)
		ins.Default = def
		ins.Unevaluated = pd.Insert.Unevaluated
		ins.Name = pd.Insert.Name
		parts = append(parts, model.InsertPart(ins))
	}
	ct := model.NewCustomBlockType(model.BlockShape(cd.Shape), parts)
	ct.Atomic = cd.Atomic
	return ct, nil
}

func (d *decoder) scope(v *model.VarScope, sd scopeDoc) error {
	for _, vd := range sd.Variables {
		value, err := d.value(vd.Value)
		if err != nil {
			return fmt.Errorf("variable %q: %w", vd.Name, err)
		}
		variable := model.NewVariable(value)
		variable.IsCloud = vd.Cloud
		v.Variables[vd.Name] = variable
	}
	for _, ld := range sd.Lists {
		l := model.NewList(ld.Items...)
		l.IsCloud = ld.Cloud
		v.Lists[ld.Name] = l
	}
	return nil
}

func (d *decoder) scriptable(s model.Scriptable, sd scriptableDoc) error {
	base := s.Base()
	if err := d.scope(&base.VarScope, sd.Scope); err != nil {
		return err
	}
	base.Volume = sd.Volume

	for n, script := range sd.Scripts {
		blocks, err := d.stack(script.Blocks)
		if err != nil {
			return fmt.Errorf("script %d: %w", n, err)
		}
		base.AddScript(model.NewScript(pt(script.Pos), blocks...))
	}
	for _, c := range sd.Comments {
		base.Comments = append(base.Comments, model.NewComment(c.Text, pt(c.Pos)))
	}
	for _, cd := range sd.Costumes {
		base.Costumes = append(base.Costumes, &model.Costume{
			Name:           cd.Name,
			Image:          media.NewImage(cd.Image.Data, cd.Image.Format),
			RotationCenter: model.Point{X: cd.CenterX, Y: cd.CenterY},
		})
	}
	if sd.Costume >= 0 {
		if err := base.SetCostumeIndex(sd.Costume); err != nil {
			return err
		}
	}
	for _, snd := range sd.Sounds {
		base.Sounds = append(base.Sounds, model.NewSound(snd.Name, media.NewWaveform(snd.Data)))
	}
	return nil
}

func pt(p *pointDoc) *model.Point {
	if p == nil {
		return nil
	}
	return model.Pt(p.X, p.Y)
}

func (d *decoder) stack(docs []blockDoc) ([]*model.Block, error) {
	out := make([]*model.Block, 0, len(docs))
	for n := range docs {
		b, err := d.block(&docs[n])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// block rebuilds a block without re-applying defaults or coercion, so the
// arguments come back exactly as they were saved.
func (d *decoder) block(bd *blockDoc) (*model.Block, error) {
	var t model.Type
	switch {
	case bd.Command != "":
		bt, err := d.vocab.ResolveCommand(Name, bd.Command)
		if err != nil {
			return nil, err
		}
		t = bt
	case bd.Custom > 0 && bd.Custom <= len(d.customs):
		t = d.customs[bd.Custom-1]
	default:
		return nil, fmt.Errorf("block refers to no type")
	}

	b := &model.Block{Type: t, Args: make([]any, len(bd.Args)), Comment: bd.Comment}
	for n, vd := range bd.Args {
		v, err := d.value(vd)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", n, err)
		}
		b.Args[n] = v
	}
	return b, nil
}

func (d *decoder) value(vd valueDoc) (any, error) {
	switch vd.Kind {
	case kindNil:
		return nil, nil
	case kindInt:
		return safecast.Convert[int](vd.Int)
	case kindFloat:
		return vd.Float, nil
	case kindString:
		return vd.String, nil
	case kindBool:
		return vd.Bool, nil
	case kindColor:
		rgb, err := safecast.Convert[int](vd.Int)
		if err != nil {
			return nil, err
		}
		return model.ColorFromRGB(rgb), nil
	case kindBlock:
		if vd.Block == nil {
			return nil, fmt.Errorf("block value without a block")
		}
		return d.block(vd.Block)
	case kindStack:
		return d.stack(vd.Stack)
	case kindCustom:
		if vd.Custom < 0 || vd.Custom >= len(d.customs) {
			return nil, fmt.Errorf("custom block %d does not exist", vd.Custom)
		}
		return d.customs[vd.Custom], nil
	}
	return nil, fmt.Errorf("unknown value kind %q", vd.Kind)
}

func (d *decoder) watcher(wd *watcherDoc) (*model.Watcher, error) {
	var target model.VariableOwner
	switch wd.Target.Kind {
	case targetProject:
		target = d.project
	case targetStage:
		target = d.project.Stage
	case targetSprite:
		s := d.project.Sprite(wd.Target.Sprite)
		if s == nil {
			return nil, fmt.Errorf("watcher target %q does not exist", wd.Target.Sprite)
		}
		target = s
	default:
		return nil, fmt.Errorf("unknown watcher target kind %q", wd.Target.Kind)
	}
	b, err := d.block(&wd.Block)
	if err != nil {
		return nil, err
	}
	w := model.NewWatcher(target, b)
	w.Style = wd.Style
	w.Pos = pt(wd.Pos)
	w.Visible = wd.Visible
	w.SliderMin, w.SliderMax = wd.SliderMin, wd.SliderMax
	return w, nil
}
