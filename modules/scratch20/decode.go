package scratch20

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path"

	"fortio.org/safecast"
	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// decoder turns a parsed project.json and the archive members it references
// into a Project.
type decoder struct {
	vocab   Vocabulary
	files   map[string]*zip.File
	project *model.Project
}

func (d *decoder) decode(doc *projectJSON) (*model.Project, error) {
	p := model.NewProject()
	p.Format = Name
	d.project = p

	if doc.Tempo > 0 {
		p.Tempo = doc.Tempo
	}
	if author, ok := doc.Info["author"].(string); ok {
		p.Author = author
	}
	if notes, ok := doc.Info["comment"].(string); ok {
		p.Notes = notes
	}

	// Stage variables are the project's globals in this format.
	d.variables(&p.VarScope, doc.Variables, doc.Lists)
	if err := d.scriptable(p.Stage, &doc.objectJSON); err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	children := make([]childJSON, len(doc.Children))
	for n, raw := range doc.Children {
		if err := json.Unmarshal(raw, &children[n]); err != nil {
			return nil, fmt.Errorf("child %d: %w", n, err)
		}
	}

	// Sprites first, so watchers can refer to sprites listed after them.
	sprites := map[*childJSON]*model.Sprite{}
	for n := range children {
		c := &children[n]
		if !c.isSprite() {
			continue
		}
		s, err := d.sprite(c)
		if err != nil {
			return nil, fmt.Errorf("sprite %q: %w", c.ObjName, err)
		}
		if p.Sprite(s.Name) != nil {
			return nil, &model.StructuralInvariantError{Reason: fmt.Sprintf("sprite name %q is not unique", s.Name)}
		}
		p.Sprites = append(p.Sprites, s)
		sprites[c] = s
	}

	for n := range children {
		c := &children[n]
		if s, ok := sprites[c]; ok {
			p.Actors = append(p.Actors, s)
			continue
		}
		w, err := d.watcher(c)
		if err != nil {
			return nil, fmt.Errorf("watcher %d: %w", n, err)
		}
		p.AddWatcher(w)
	}
	return p, nil
}

func (d *decoder) sprite(c *childJSON) (*model.Sprite, error) {
	s := model.NewSprite(d.project, c.ObjName)
	s.Position = model.Point{X: *c.ScratchX}
	if c.ScratchY != nil {
		s.Position.Y = *c.ScratchY
	}
	if c.Scale > 0 {
		s.Size = c.Scale * 100
	}
	if c.Direction != 0 {
		s.Direction = c.Direction
	}
	if c.RotationStyle != "" {
		s.RotationStyle = c.RotationStyle
	}
	s.Draggable = c.IsDraggable
	if c.Visible != nil {
		s.Visible = *c.Visible
	}
	d.variables(&s.VarScope, c.Variables, c.Lists)
	obj := c.object()
	if err := d.scriptable(s, &obj); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *decoder) variables(scope *model.VarScope, vars []variableJSON, lists []listJSON) {
	for _, v := range vars {
		variable := model.NewVariable(jsonNumber(v.Value))
		variable.IsCloud = v.IsPersistent
		scope.Variables[v.Name] = variable
	}
	for _, l := range lists {
		items := make([]string, len(l.Contents))
		for n, item := range l.Contents {
			items[n] = model.FormatValue(jsonNumber(item))
		}
		list := model.NewList(items...)
		list.IsCloud = l.IsPersistent
		scope.Lists[l.ListName] = list
	}
}

func (d *decoder) scriptable(s model.Scriptable, obj *objectJSON) error {
	base := s.Base()
	if obj.Volume != nil {
		volume, err := safecast.Convert[int](math.Round(*obj.Volume))
		if err != nil {
			return fmt.Errorf("volume: %w", err)
		}
		base.Volume = volume
	}

	for _, cj := range obj.Costumes {
		c, err := d.costume(cj)
		if err != nil {
			return err
		}
		base.Costumes = append(base.Costumes, c)
	}
	if len(base.Costumes) > 0 {
		if err := base.SetCostumeIndex(obj.CurrentCostumeIndex); err != nil {
			return err
		}
	}
	for _, sj := range obj.Sounds {
		snd, err := d.sound(sj)
		if err != nil {
			return err
		}
		base.Sounds = append(base.Sounds, snd)
	}

	defs := customs{}
	for _, raw := range obj.Scripts {
		d.defineCustoms(raw, defs)
	}
	for n, raw := range obj.Scripts {
		script, err := d.script(raw, defs)
		if err != nil {
			return fmt.Errorf("script %d: %w", n, err)
		}
		base.AddScript(script)
	}
	return d.comments(base, obj.ScriptComments)
}

func (d *decoder) costume(cj costumeJSON) (*model.Costume, error) {
	ext := path.Ext(cj.BaseLayerMD5)
	data, err := d.asset(cj.BaseLayerID, ext, cj.BaseLayerMD5)
	if err != nil {
		return nil, fmt.Errorf("costume %q: %w", cj.CostumeName, err)
	}
	return &model.Costume{
		Name:           cj.CostumeName,
		Image:          media.NewImage(data, media.NormalizeFormat(ext)),
		RotationCenter: model.Point{X: cj.RotationCenterX, Y: cj.RotationCenterY},
	}, nil
}

func (d *decoder) sound(sj soundJSON) (*model.Sound, error) {
	data, err := d.asset(sj.SoundID, path.Ext(sj.MD5), sj.MD5)
	if err != nil {
		return nil, fmt.Errorf("sound %q: %w", sj.SoundName, err)
	}
	return model.NewSound(sj.SoundName, media.NewWaveform(data)), nil
}

// asset reads an archive member by index, falling back to its content hash
// name.
func (d *decoder) asset(id int, ext, md5Name string) ([]byte, error) {
	f, ok := d.files[fmt.Sprintf("%d%s", id, ext)]
	if !ok {
		f, ok = d.files[md5Name]
	}
	if !ok {
		return nil, fmt.Errorf("asset %d%s is missing from the archive", id, ext)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open asset '%s': %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// defineCustoms registers the definitions of a script ahead of decoding, so
// calls placed before their definition bind to it.
func (d *decoder) defineCustoms(raw []any, defs customs) {
	if len(raw) < 3 {
		return
	}
	blocks, _ := raw[2].([]any)
	if len(blocks) == 0 {
		return
	}
	hat, _ := blocks[0].([]any)
	if len(hat) < 2 || hat[0] != procDefCommand {
		return
	}
	spec, _ := hat[1].(string)
	var names []string
	if list, ok := at(hat, 2).([]any); ok {
		for _, n := range list {
			name, _ := n.(string)
			names = append(names, name)
		}
	}
	defaults, _ := at(hat, 3).([]any)
	atomic, _ := at(hat, 4).(bool)
	defs[spec] = customType(spec, names, defaults, atomic)
}

func (d *decoder) script(raw []any, defs customs) (*model.Script, error) {
	if len(raw) != 3 {
		return nil, fmt.Errorf("expected [x, y, blocks], got %d elements", len(raw))
	}
	x, _ := raw[0].(float64)
	y, _ := raw[1].(float64)
	blocks, err := d.stack(raw[2], defs)
	if err != nil {
		return nil, err
	}
	return model.NewScript(model.Pt(x, y), blocks...), nil
}

func (d *decoder) stack(v any, defs customs) ([]*model.Block, error) {
	out := []*model.Block{}
	if v == nil {
		return out, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a block sequence, got %T", v)
	}
	for _, item := range items {
		raw, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a block, got %T", item)
		}
		b, err := d.block(raw, defs)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (d *decoder) block(raw []any, defs customs) (*model.Block, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty block")
	}
	cmd, ok := raw[0].(string)
	if !ok {
		return nil, fmt.Errorf("block command must be a string, got %T", raw[0])
	}

	switch cmd {
	case procDefCommand:
		bt, err := d.vocab.ResolveCommand(Name, cmd)
		if err != nil {
			return nil, err
		}
		spec, _ := at(raw, 1).(string)
		return model.NewBlockOfType(bt, defs.get(spec)), nil
	case callCommand:
		spec, _ := at(raw, 1).(string)
		ct := defs.get(spec)
		args, err := d.args(ct.Inserts(), raw[2:], defs)
		if err != nil {
			return nil, err
		}
		return model.NewBlockOfType(ct, args...), nil
	}

	bt, err := d.vocab.ResolveCommand(Name, cmd)
	if err != nil {
		return nil, err
	}
	args, err := d.args(bt.Inserts(), raw[1:], defs)
	if err != nil {
		return nil, fmt.Errorf("block %q: %w", cmd, err)
	}
	return model.NewBlockOfType(bt, args...), nil
}

func (d *decoder) args(inserts []*model.Insert, raw []any, defs customs) ([]any, error) {
	out := make([]any, len(raw))
	for n, v := range raw {
		var ins *model.Insert
		if n < len(inserts) {
			ins = inserts[n]
		}
		a, err := d.value(ins, v, defs)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", n, err)
		}
		out[n] = a
	}
	return out, nil
}

func (d *decoder) value(ins *model.Insert, v any, defs customs) (any, error) {
	if ins != nil && ins.Shape == model.InsertStack {
		return d.stack(v, defs)
	}
	switch v := v.(type) {
	case []any:
		return d.block(v, defs)
	case float64:
		if ins != nil && ins.Shape == model.InsertColor {
			rgb, err := safecast.Convert[int](v)
			if err != nil {
				return nil, fmt.Errorf("color: %w", err)
			}
			return model.ColorFromRGB(rgb & 0xffffff), nil
		}
		return jsonNumber(v), nil
	}
	return v, nil
}

// comments attaches comments that point at a top-level block to it. The
// others, including those on nested blocks, stay on the canvas.
func (d *decoder) comments(base *model.Scripted, raw [][]any) error {
	blocks := blockIndex(base)
	for n, c := range raw {
		if len(c) < 7 {
			return fmt.Errorf("comment %d: expected 7 elements, got %d", n, len(c))
		}
		x, _ := c[0].(float64)
		y, _ := c[1].(float64)
		text, _ := c[6].(string)
		id := -1
		if f, ok := c[5].(float64); ok {
			if n, err := safecast.Convert[int](f); err == nil {
				id = n
			}
		}
		if id >= 0 && id < len(blocks) && blocks[id].topLevel && blocks[id].block.Comment == "" {
			blocks[id].block.Comment = text
			continue
		}
		base.Comments = append(base.Comments, model.NewComment(text, model.Pt(x, y)))
	}
	return nil
}

type indexedBlock struct {
	block    *model.Block
	topLevel bool
}

// blockIndex numbers every block of the scriptable in script order,
// pre-order, which is how comments refer to blocks.
func blockIndex(base *model.Scripted) []indexedBlock {
	var out []indexedBlock
	for _, script := range base.Scripts {
		top := map[*model.Block]bool{}
		for _, b := range script.Blocks {
			top[b] = true
		}
		script.Walk(func(b *model.Block) bool {
			out = append(out, indexedBlock{block: b, topLevel: top[b]})
			return true
		})
	}
	return out
}

func (d *decoder) watcher(c *childJSON) (*model.Watcher, error) {
	var (
		block *model.Block
		owner model.VariableOwner
		err   error
	)
	switch {
	case c.isListWatcher():
		owner, err = d.owner(c.Target, true)
		if err != nil {
			return nil, err
		}
		if _, ok := owner.Scope().Lists[c.ListName]; !ok {
			return nil, fmt.Errorf("list %q is not defined on %s", c.ListName, c.Target)
		}
		block, err = d.command(model.CommandContentsOfList, c.ListName)
	case c.Cmd == getVarCommand:
		owner, err = d.owner(c.Target, true)
		if err != nil {
			return nil, err
		}
		block, err = d.command(model.CommandReadVariable, c.Param)
	default:
		owner, err = d.owner(c.Target, false)
		if err != nil {
			return nil, err
		}
		if c.Param != nil {
			block, err = d.command(c.Cmd, jsonNumber(c.Param))
		} else {
			block, err = d.command(c.Cmd)
		}
	}
	if err != nil {
		return nil, err
	}

	w := model.NewWatcher(owner, block)
	switch c.Mode {
	case modeLarge:
		w.Style = model.StyleLarge
	case modeSlider:
		w.Style = model.StyleSlider
	}
	if c.SliderMin != nil {
		w.SliderMin = *c.SliderMin
	}
	if c.SliderMax != nil {
		w.SliderMax = *c.SliderMax
	}
	if c.X != nil && c.Y != nil {
		w.Pos = model.Pt(*c.X, *c.Y)
	}
	if c.Visible != nil {
		w.Visible = *c.Visible
	}
	return w, nil
}

func (d *decoder) command(cmd string, args ...any) (*model.Block, error) {
	bt, err := d.vocab.ResolveCommand(Name, cmd)
	if err != nil {
		return nil, err
	}
	return model.NewBlockOfType(bt, args...), nil
}

// owner finds a watcher target. The stage stands for the project when the
// watcher shows a variable or list, because stage variables are globals here.
func (d *decoder) owner(name string, variable bool) (model.VariableOwner, error) {
	if name == model.StageName {
		if variable {
			return d.project, nil
		}
		return d.project.Stage, nil
	}
	if s := d.project.Sprite(name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("watcher target %q does not exist", name)
}

// jsonNumber turns integral float64 values into int.
func jsonNumber(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	if n, err := safecast.Convert[int](f); err == nil {
		return n
	}
	return f
}

func at(raw []any, n int) any {
	if n < len(raw) {
		return raw[n]
	}
	return nil
}
