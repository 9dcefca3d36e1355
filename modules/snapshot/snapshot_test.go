package snapshot_test

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/pipeline"
	"github.com/specialistvlad/scratchkit/internal/registry"
	"github.com/specialistvlad/scratchkit/internal/testutil"
	"github.com/specialistvlad/scratchkit/modules/compat"
	"github.com/specialistvlad/scratchkit/modules/scratch14"
	"github.com/specialistvlad/scratchkit/modules/scratch20"
	"github.com/specialistvlad/scratchkit/modules/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	r.Register(&compat.Module{}, &scratch20.Module{}, &scratch14.Module{}, &snapshot.Module{})
	ctx, _ := testutil.Context(t)
	require.NoError(t, r.Validate(ctx))
	return r
}

func TestModule_MirrorsVocabulary(t *testing.T) {
	r := newRegistry(t)

	all := r.BlockTypes()
	assert.Len(t, r.BlockTypesFor(snapshot.Name), len(all))
	for _, bt := range all {
		pbt, err := r.Convert(bt, snapshot.Name)
		require.NoError(t, err, bt.Command())
		assert.Equal(t, bt.Command(), pbt.Command)
	}

	plugin, err := r.FormatByExtension(".sksnap")
	require.NoError(t, err)
	assert.Len(t, plugin.Features(), len(r.Features()))
}

func TestPlugin_RoundTrip(t *testing.T) {
	r := newRegistry(t)
	ctx, _ := testutil.Context(t)
	block := func(id any, args ...any) *model.Block {
		return testutil.Block(t, r, id, args...)
	}

	p := model.NewProject()
	p.Name = "mixed"
	p.Format = scratch14.Name
	p.Author = "ada"
	p.Tempo = 120
	p.Thumbnail = media.Solid(4, 3, color.White)
	p.Variables["score"] = model.NewVariable(1.5)
	p.Stage.Variables["level"] = model.NewVariable("one")
	p.Stage.Lists["maps"] = model.NewList("a", "b")
	p.Stage.AddScript(model.NewScript(model.Pt(0, 0),
		block("whenGreenFlag"),
		block("doForeverIf", block("isLoud"), []*model.Block{block("stopAll")}),
	))

	cat, err := p.AddSprite("Cat")
	require.NoError(t, err)
	costume, err := model.NewCostume("c", media.Solid(2, 2, color.Black))
	require.NoError(t, err)
	cat.Costumes = []*model.Costume{costume}
	cat.Volume = 42
	cat.RotationStyle = model.RotateNone
	wave, err := media.NewPCMWaveform(11025, make([]int16, 10))
	require.NoError(t, err)
	cat.Sounds = []*model.Sound{model.NewSound("beep", wave)}

	height := model.NewInsert(model.InsertNumber, "", 5)
	height.Name = "h"
	jump := model.NewCustomBlockType(model.StackShape, []model.Part{model.TextPart("jump "), model.InsertPart(height)})
	cat.AddScript(model.NewScript(model.Pt(0, 0), block("procDef", jump), block("changeYposBy:", block("getParam", "h", "r"))))
	hat := block("whenClicked")
	hat.Comment = "click me"
	cat.AddScript(model.NewScript(model.Pt(0, 200),
		hat,
		model.NewBlockOfType(jump, 2.5),
		block("say:", "12"),
		block("penColor:", model.MustParseColor("#102030")),
		block("motorOnFor:elapsed:from:", 3),
	))
	cat.AddScript(model.NewScript(nil, block("show")))
	cat.Comments = []*model.Comment{model.NewComment("loose", nil)}

	level := p.AddWatcher(model.NewWatcher(p.Stage, block("readVariable", "level")))
	level.Style = model.StyleLarge
	p.AddWatcher(model.NewWatcher(cat, block("xpos")))

	// 1.4 has no custom blocks, so the project goes straight to snapshot.
	notices, err := pipeline.Convert(ctx, p, r, snapshot.Name)
	require.NoError(t, err)
	assert.Empty(t, notices)

	plugin, err := r.Format(snapshot.Name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, plugin.Save(ctx, &buf, p))
	loaded, err := plugin.Load(ctx, &buf)
	require.NoError(t, err)

	notices, err = pipeline.Normalize(ctx, loaded, r)
	require.NoError(t, err)
	assert.Empty(t, notices)

	t.Run("project", func(t *testing.T) {
		assert.Equal(t, snapshot.Name, loaded.Format)
		assert.Equal(t, "mixed", loaded.Name)
		assert.Equal(t, "ada", loaded.Author)
		assert.Equal(t, 120.0, loaded.Tempo)
		require.NotNil(t, loaded.Thumbnail)
		w, h, err := loaded.Thumbnail.Size()
		require.NoError(t, err)
		assert.Equal(t, []int{4, 3}, []int{w, h})
	})

	t.Run("variables keep their owner and type", func(t *testing.T) {
		assert.Equal(t, 1.5, loaded.Variables["score"].Value)
		assert.Equal(t, "one", loaded.Stage.Variables["level"].Value)
		assert.Equal(t, []string{"a", "b"}, loaded.Stage.Lists["maps"].Items)
		assert.Same(t, loaded.Stage, loaded.Stage.Variables["level"].Watcher().Target)
	})

	t.Run("scripts are identical", func(t *testing.T) {
		for n, s := range p.Scriptables() {
			orig, got := s.Base(), loaded.Scriptables()[n].Base()
			require.Len(t, got.Scripts, len(orig.Scripts))
			for i := range orig.Scripts {
				assert.Equal(t, orig.Scripts[i].Pos, got.Scripts[i].Pos)
				assert.Equal(t, orig.Scripts[i].String(), got.Scripts[i].String())
			}
			assert.Equal(t, orig.Comments, got.Comments)
		}

		script := loaded.Sprite("Cat").Scripts[1]
		assert.Equal(t, "click me", script.At(0).Comment)
		assert.Equal(t, "12", script.At(2).Arg(0), "text stays text")
		assert.Equal(t, model.MustParseColor("#102030"), script.At(3).Arg(0))
	})

	t.Run("custom blocks", func(t *testing.T) {
		cat := loaded.Sprite("Cat")
		def, ok := cat.Scripts[0].At(0).Arg(0).(*model.CustomBlockType)
		require.True(t, ok)
		assert.Same(t, def, cat.Scripts[1].At(1).Type)
		assert.Equal(t, "h", def.Inserts()[0].Name)
		assert.Equal(t, 5, def.Inserts()[0].Default)
		assert.Equal(t, 2.5, cat.Scripts[1].At(1).Arg(0))
	})

	t.Run("media and sprite state", func(t *testing.T) {
		cat := loaded.Sprite("Cat")
		assert.Equal(t, 42, cat.Volume)
		assert.Equal(t, model.RotateNone, cat.RotationStyle)
		assert.Equal(t, 0, cat.CostumeIndex())
		want, err := costume.Image.Bytes()
		require.NoError(t, err)
		got, err := cat.Costumes[0].Image.Bytes()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		rate, err := cat.Sounds[0].Waveform.Rate()
		require.NoError(t, err)
		assert.Equal(t, 11025, rate)
	})

	t.Run("actors", func(t *testing.T) {
		require.Len(t, loaded.Actors, len(p.Actors))
		for n, a := range p.Actors {
			switch a := a.(type) {
			case *model.Sprite:
				assert.Equal(t, a.Name, loaded.Actors[n].(*model.Sprite).Name)
			case *model.Watcher:
				w := loaded.Actors[n].(*model.Watcher)
				assert.Equal(t, a.Name(), w.Name())
				assert.Equal(t, a.Style, w.Style)
				assert.Equal(t, a.Visible, w.Visible)
			}
		}
	})
}

func TestPlugin_LoadErrors(t *testing.T) {
	r := newRegistry(t)
	ctx, _ := testutil.Context(t)
	plugin, err := r.Format(snapshot.Name)
	require.NoError(t, err)

	_, err = plugin.Load(ctx, bytes.NewReader([]byte{0xc1}))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, plugin.Save(ctx, &buf, model.NewProject()))
	loaded, err := plugin.Load(ctx, &buf)
	require.NoError(t, err)
	assert.Empty(t, loaded.Sprites)
}
