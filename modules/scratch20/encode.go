package scratch20

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
)

// Watcher colours by category, as the editor draws them.
const (
	variableColor = 0xEE7D16
	reporterColor = 0x4A6CD4
)

// Canvas size of comments written by the encoder.
const (
	commentWidth  = 200
	commentHeight = 100
)

type encoder struct {
	vocab  Vocabulary
	images *media.Store
	sounds *media.Store
}

func newEncoder(vocab Vocabulary) *encoder {
	return &encoder{vocab: vocab, images: media.NewStore(), sounds: media.NewStore()}
}

func (e *encoder) encode(p *model.Project) (*projectJSON, error) {
	if len(p.Stage.Variables) > 0 || len(p.Stage.Lists) > 0 {
		return nil, fmt.Errorf("stage-specific variables must be made global before saving")
	}

	doc := &projectJSON{
		Tempo:      p.Tempo,
		PenLayerID: -1,
		Info: map[string]any{
			"spriteCount": len(p.Sprites),
			"scriptCount": countScripts(p),
		},
	}
	if p.Author != "" {
		doc.Info["author"] = p.Author
	}
	if p.Notes != "" {
		doc.Info["comment"] = p.Notes
	}

	stage, err := e.object(p.Stage, &p.VarScope)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	doc.objectJSON = *stage

	index := 0
	for _, a := range p.Actors {
		var child any
		switch a := a.(type) {
		case *model.Sprite:
			index++
			child, err = e.sprite(a, index)
		case *model.Watcher:
			child, err = e.watcher(a)
		}
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(child)
		if err != nil {
			return nil, err
		}
		doc.Children = append(doc.Children, raw)
	}
	return doc, nil
}

func countScripts(p *model.Project) int {
	n := 0
	for _, s := range p.Scriptables() {
		n += len(s.Base().Scripts)
	}
	return n
}

func (e *encoder) sprite(s *model.Sprite, index int) (*spriteJSON, error) {
	obj, err := e.object(s, &s.VarScope)
	if err != nil {
		return nil, fmt.Errorf("sprite %q: %w", s.Name, err)
	}
	return &spriteJSON{
		objectJSON:     *obj,
		ScratchX:       s.Position.X,
		ScratchY:       s.Position.Y,
		Scale:          s.Size / 100,
		Direction:      s.Direction,
		RotationStyle:  s.RotationStyle,
		IsDraggable:    s.Draggable,
		IndexInLibrary: index,
		Visible:        s.Visible,
		SpriteInfo:     map[string]any{},
	}, nil
}

// object encodes the parts common to the stage and sprites. vars is where the
// object's variables live: the project globals for the stage.
func (e *encoder) object(s model.Scriptable, vars *model.VarScope) (*objectJSON, error) {
	base := s.Base()
	volume := float64(base.Volume)
	obj := &objectJSON{
		ObjName:             s.ScriptableName(),
		CurrentCostumeIndex: max(base.CostumeIndex(), 0),
		Volume:              &volume,
	}

	for _, name := range sortedKeys(vars.Variables) {
		v := vars.Variables[name]
		value := scalar(v.Value)
		if value == nil {
			value = 0
		}
		obj.Variables = append(obj.Variables, variableJSON{Name: name, Value: value, IsPersistent: v.IsCloud})
	}
	for _, name := range sortedKeys(vars.Lists) {
		obj.Lists = append(obj.Lists, listEntry(name, vars.Lists[name]))
	}

	for _, c := range base.Costumes {
		cj, err := e.costume(c)
		if err != nil {
			return nil, err
		}
		obj.Costumes = append(obj.Costumes, cj)
	}
	for _, snd := range base.Sounds {
		sj, err := e.sound(snd)
		if err != nil {
			return nil, err
		}
		obj.Sounds = append(obj.Sounds, sj)
	}

	for n, script := range base.Scripts {
		raw, err := e.script(script)
		if err != nil {
			return nil, fmt.Errorf("script %d: %w", n, err)
		}
		obj.Scripts = append(obj.Scripts, raw)
	}
	obj.ScriptComments = e.comments(base)
	return obj, nil
}

func listEntry(name string, l *model.List) listJSON {
	entry := listJSON{
		ListName:     name,
		Contents:     make([]any, len(l.Items)),
		IsPersistent: l.IsCloud,
	}
	for n, item := range l.Items {
		entry.Contents[n] = item
	}
	if w := l.Watcher(); w != nil {
		entry.X, entry.Y = position(w.Pos)
		entry.Visible = w.Visible
	}
	return entry
}

// position splits an optional canvas position into optional coordinates.
func position(pos *model.Point) (x, y *float64) {
	if pos == nil {
		return nil, nil
	}
	return &pos.X, &pos.Y
}

func (e *encoder) costume(c *model.Costume) (costumeJSON, error) {
	entry, _, err := e.images.Add(c.Image)
	if err != nil {
		return costumeJSON{}, fmt.Errorf("costume %q: %w", c.Name, err)
	}
	return costumeJSON{
		CostumeName:      c.Name,
		BaseLayerID:      entry.Index,
		BaseLayerMD5:     entry.Digest + c.Image.Extension(),
		BitmapResolution: 1,
		RotationCenterX:  c.RotationCenter.X,
		RotationCenterY:  c.RotationCenter.Y,
	}, nil
}

func (e *encoder) sound(snd *model.Sound) (soundJSON, error) {
	entry, _, err := e.sounds.Add(snd.Waveform)
	if err != nil {
		return soundJSON{}, fmt.Errorf("sound %q: %w", snd.Name, err)
	}
	rate, err := snd.Waveform.Rate()
	if err != nil {
		return soundJSON{}, fmt.Errorf("sound %q: %w", snd.Name, err)
	}
	count, err := snd.Waveform.SampleCount()
	if err != nil {
		return soundJSON{}, fmt.Errorf("sound %q: %w", snd.Name, err)
	}
	return soundJSON{
		SoundName:   snd.Name,
		SoundID:     entry.Index,
		MD5:         entry.Digest + snd.Waveform.Extension(),
		SampleCount: count,
		Rate:        rate,
	}, nil
}

func (e *encoder) script(s *model.Script) ([]any, error) {
	var x, y float64
	if s.Pos != nil {
		x, y = s.Pos.X, s.Pos.Y
	}
	blocks, err := e.stack(s.Blocks)
	if err != nil {
		return nil, err
	}
	return []any{x, y, blocks}, nil
}

func (e *encoder) stack(blocks []*model.Block) ([]any, error) {
	out := make([]any, 0, len(blocks))
	for _, b := range blocks {
		raw, err := e.block(b)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (e *encoder) block(b *model.Block) ([]any, error) {
	switch t := b.Type.(type) {
	case *model.CustomBlockType:
		spec, _, _ := customSpec(t)
		return e.appendArgs([]any{callCommand, spec}, t.Inserts(), b.Args)
	case *model.BlockType:
		pbt, err := e.vocab.Convert(t, Name)
		if err != nil {
			return nil, err
		}
		if pbt.Command == procDefCommand {
			ct, ok := b.Arg(0).(*model.CustomBlockType)
			if !ok {
				return nil, fmt.Errorf("definition without a custom block type")
			}
			spec, names, defaults := customSpec(ct)
			return []any{procDefCommand, spec, names, defaults, ct.Atomic}, nil
		}
		return e.appendArgs([]any{pbt.Command}, pbt.Inserts(), b.Args)
	}
	return nil, fmt.Errorf("cannot encode block of type %T", b.Type)
}

func (e *encoder) appendArgs(out []any, inserts []*model.Insert, args []any) ([]any, error) {
	for n, arg := range args {
		v, err := e.value(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", n, err)
		}
		// An empty C-block mouth is stored as null.
		if n < len(inserts) && inserts[n].Shape == model.InsertStack {
			if list, ok := v.([]any); ok && len(list) == 0 {
				v = nil
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *encoder) value(arg any) (any, error) {
	switch v := arg.(type) {
	case *model.Block:
		return e.block(v)
	case []*model.Block:
		return e.stack(v)
	case model.Color:
		return v.RGB(), nil
	case *model.CustomBlockType:
		return nil, fmt.Errorf("custom block type outside a definition")
	}
	return arg, nil
}

// comments writes free comments first, then the comments of top-level blocks
// with the block's index in blockIndex order.
func (e *encoder) comments(base *model.Scripted) [][]any {
	var out [][]any
	for _, c := range base.Comments {
		var x, y float64
		if c.Pos != nil {
			x, y = c.Pos.X, c.Pos.Y
		}
		out = append(out, []any{x, y, commentWidth, commentHeight, true, -1, c.Text})
	}
	for id, ib := range blockIndex(base) {
		if !ib.topLevel || ib.block.Comment == "" {
			continue
		}
		out = append(out, []any{0, 0, commentWidth, commentHeight, true, id, ib.block.Comment})
	}
	return out
}

func (e *encoder) watcher(w *model.Watcher) (any, error) {
	target, err := targetName(w.Target)
	if err != nil {
		return nil, err
	}
	x, y := position(w.Pos)

	if w.Kind() == model.WatchList {
		l, ok := w.Value().(*model.List)
		if !ok {
			return nil, fmt.Errorf("list watcher %q shows no list", w.Name())
		}
		entry := listEntry(w.Name(), l)
		entry.X, entry.Y, entry.Visible = x, y, w.Visible
		return &listWatcherJSON{listJSON: entry, Target: target}, nil
	}

	out := &watcherJSON{
		Target:    target,
		Mode:      modeNormal,
		SliderMin: w.SliderMin,
		SliderMax: w.SliderMax,
		X:         x,
		Y:         y,
		Visible:   w.Visible,
	}
	switch w.Style {
	case model.StyleLarge:
		out.Mode = modeLarge
	case model.StyleSlider:
		out.Mode = modeSlider
	}

	if w.Kind() == model.WatchVariable {
		out.Cmd = getVarCommand
		out.Param = w.Name()
		out.Color = variableColor
		out.Label = w.Name()
		if s, ok := w.Target.(*model.Sprite); ok {
			out.Label = s.Name + ": " + w.Name()
		}
		return out, nil
	}

	bt, ok := w.Block.Type.(*model.BlockType)
	if !ok {
		return nil, fmt.Errorf("watcher block %s is not a built-in block", w.Block)
	}
	pbt, err := e.vocab.Convert(bt, Name)
	if err != nil {
		return nil, err
	}
	out.Cmd = pbt.Command
	out.Param = scalar(w.Block.Arg(0))
	out.Color = reporterColor
	out.Label = w.Block.String()
	return out, nil
}

func targetName(owner model.VariableOwner) (string, error) {
	switch o := owner.(type) {
	case *model.Project, *model.Stage:
		return model.StageName, nil
	case *model.Sprite:
		return o.Name, nil
	}
	return "", fmt.Errorf("watcher has no target")
}

// scalar keeps JSON-native values and renders anything else as text.
func scalar(v any) any {
	switch v.(type) {
	case nil, string, int, float64, bool:
		return v
	}
	return model.FormatValue(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
