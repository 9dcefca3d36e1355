package pipeline

import (
	"errors"
	"slices"
	"testing"

	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/registry"
	"github.com/specialistvlad/scratchkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8" width="8" height="8">
<rect x="0" y="0" width="8" height="8" fill="#ff0000"/>
</svg>`

// snapshot renders the parts of a project normalization may touch.
func snapshot(p *model.Project) []string {
	var out []string
	for _, s := range p.Scriptables() {
		for _, script := range s.Base().Scripts {
			out = append(out, script.String())
		}
	}
	for _, w := range p.Watchers() {
		out = append(out, w.String())
	}
	for _, owner := range p.VariableOwners() {
		out = append(out, sortedNames(owner.Scope().Variables)...)
		out = append(out, sortedNames(owner.Scope().Lists)...)
	}
	return append(out, p.Format, p.Notes)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)

	for _, target := range []string{testutil.Alpha, testutil.Beta} {
		t.Run(target, func(t *testing.T) {
			p := testutil.SampleProject(t, reg)
			p.Stage.Variables["lives"] = model.NewVariable(3)
			p.Variables["hs"] = &model.Variable{Value: 0, IsCloud: true}

			_, err := Convert(ctx, p, reg, target)
			require.NoError(t, err)
			before := snapshot(p)

			notices, err := Normalize(ctx, p, reg)
			require.NoError(t, err)
			assert.Empty(t, notices)
			assert.Equal(t, before, snapshot(p))
		})
	}
}

func TestNormalize_SynchronizesWatchers(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	explicit := p.Variables["score"].Watcher()
	require.NotNil(t, explicit)

	_, err := Normalize(ctx, p, reg)
	require.NoError(t, err)

	cat := p.Sprite("Cat")
	watchables := map[model.Watchable]model.VariableOwner{
		p.Variables["score"]:   p,
		p.Lists["items"]:       p,
		cat.Variables["speed"]: cat,
	}
	require.Len(t, p.Watchers(), len(watchables))
	for v, owner := range watchables {
		w := v.Watcher()
		require.NotNil(t, w)
		assert.Same(t, v, w.Value(), "watcher resolves to the same instance")
		assert.Equal(t, owner, w.Target)
		if w == explicit {
			assert.True(t, w.Visible)
		} else {
			assert.False(t, w.Visible, "generated watchers are hidden")
		}
	}
	assert.Equal(t, model.WatchList, p.Lists["items"].Watcher().Kind())
}

func TestNormalize_RelinksRemovedWatchers(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	_, err := Normalize(ctx, p, reg)
	require.NoError(t, err)

	score := p.Variables["score"]
	removed := score.Watcher()
	require.NotNil(t, removed)
	p.Actors = slices.DeleteFunc(p.Actors, func(a model.Actor) bool { return a == model.Actor(removed) })

	_, err = Normalize(ctx, p, reg)
	require.NoError(t, err)

	w := score.Watcher()
	require.NotNil(t, w)
	assert.NotSame(t, removed, w)
	assert.Contains(t, p.Watchers(), w)
	assert.Same(t, score, w.Value())
	assert.False(t, w.Visible)
}

func TestNormalize_SortsScripts(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := model.NewProject()
	p.Format = testutil.Alpha

	loose := model.NewScript(nil, testutil.Block(t, reg, "say:", "loose"))
	lower := model.NewScript(model.Pt(10, 5), testutil.Block(t, reg, "say:", "lower"))
	upper := model.NewScript(model.Pt(10, 2), testutil.Block(t, reg, "say:", "upper"))
	p.Stage.Scripts = []*model.Script{loose, lower, upper}

	_, err := Normalize(ctx, p, reg)
	require.NoError(t, err)
	assert.Equal(t, []*model.Script{upper, lower, loose}, p.Stage.Scripts)
}

func TestNormalize_Costumes(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := model.NewProject()
	p.Format = testutil.Alpha
	cat, err := p.AddSprite("Cat")
	require.NoError(t, err)
	first, err := model.NewCostume("first", media.NewImage([]byte(redSquare), media.SVG))
	require.NoError(t, err)
	cat.Costumes = append(cat.Costumes, first)

	_, err = Normalize(ctx, p, reg)
	require.NoError(t, err)

	assert.Same(t, first, cat.Costume, "the first costume is selected")

	t.Run("a selected costume missing from the list is added", func(t *testing.T) {
		dog, err := p.AddSprite("Dog")
		require.NoError(t, err)
		listed, err := model.NewCostume("listed", media.NewImage([]byte(redSquare), media.SVG))
		require.NoError(t, err)
		loose, err := model.NewCostume("loose", media.NewImage([]byte(redSquare), media.SVG))
		require.NoError(t, err)
		dog.Costumes = []*model.Costume{listed}
		dog.Costume = loose

		_, err = Normalize(ctx, p, reg)
		require.NoError(t, err)
		assert.Same(t, loose, dog.Costume)
		assert.Equal(t, []*model.Costume{listed, loose}, dog.Costumes)
		assert.Equal(t, 1, dog.CostumeIndex())
	})

	require.NotNil(t, p.Stage.Costume)
	assert.Equal(t, "blank", p.Stage.Costume.Name)
	w, h, err := p.Stage.Costume.Image.Size()
	require.NoError(t, err)
	assert.Equal(t, []int{model.StageWidth, model.StageHeight}, []int{w, h})
}

func TestNormalize_CanonicalizesNotes(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := model.NewProject()
	p.Format = testutil.Alpha
	p.Notes = "one\r\ntwo\rthree\n"

	_, err := Normalize(ctx, p, reg)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", p.Notes)
}

func TestNormalize_StructuralInvariants(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)

	testCases := []struct {
		name   string
		mutate func(p *model.Project)
	}{
		{
			name: "duplicate sprite names",
			mutate: func(p *model.Project) {
				twin := model.NewSprite(p, "Cat")
				p.Sprites = append(p.Sprites, twin)
				p.Actors = append(p.Actors, twin)
			},
		},
		{
			name: "sprite missing from the actor list",
			mutate: func(p *model.Project) {
				p.Sprites = append(p.Sprites, model.NewSprite(p, "Ghost"))
			},
		},
		{
			name: "actor missing from the sprite list",
			mutate: func(p *model.Project) {
				p.Actors = append(p.Actors, model.NewSprite(p, "Ghost"))
			},
		},
		{
			name: "unknown rotation style",
			mutate: func(p *model.Project) {
				p.Sprite("Cat").RotationStyle = "sideways"
			},
		},
		{
			name: "watcher of a missing variable",
			mutate: func(p *model.Project) {
				p.AddWatcher(model.NewWatcher(p, testutil.Block(t, reg, model.CommandReadVariable, "nope")))
			},
		},
		{
			name: "two watchers of one variable",
			mutate: func(p *model.Project) {
				p.AddWatcher(model.NewWatcher(p, testutil.Block(t, reg, model.CommandReadVariable, "score")))
			},
		},
		{
			name: "watcher targeting another project",
			mutate: func(p *model.Project) {
				other := model.NewProject()
				other.Variables["x"] = model.NewVariable(1)
				p.AddWatcher(model.NewWatcher(other, testutil.Block(t, reg, model.CommandReadVariable, "x")))
			},
		},
		{
			name: "unknown watcher style",
			mutate: func(p *model.Project) {
				p.Variables["score"].Watcher().Style = "huge"
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := testutil.SampleProject(t, reg)
			tc.mutate(p)

			_, err := Normalize(ctx, p, reg)
			var serr *model.StructuralInvariantError
			require.True(t, errors.As(err, &serr), "got %v", err)
		})
	}
}

func TestNormalize_UnknownFormat(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)

	_, err := Convert(ctx, p, reg, "gamma")
	var ferr *registry.UnknownFormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "gamma", ferr.Name)
	assert.Equal(t, testutil.Alpha, p.Format, "the project is untouched")
}

func TestConvert_BlockWithoutConversion(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	cat := p.Sprite("Cat")
	stop := testutil.Block(t, reg, "stopAll")
	cat.AddScript(model.NewScript(model.Pt(0, 100),
		testutil.Block(t, reg, "whenGreenFlag"),
		testutil.Block(t, reg, "doIf", true, []*model.Block{stop}),
	))

	_, err := Convert(ctx, p, reg, testutil.Beta)
	var nse *model.BlockNotSupportedError
	require.True(t, errors.As(err, &nse), "got %v", err)
	assert.Same(t, stop, nse.Block, "the nested block is named")
	assert.Equal(t, model.Scriptable(cat), nse.Scriptable)
	assert.Equal(t, testutil.Beta, nse.Format)
	assert.Contains(t, err.Error(), "stop all")
}

func TestConvert_CustomBlocks(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	cat := p.Sprite("Cat")

	jump := model.NewCustomBlockType(model.StackShape, []model.Part{
		model.TextPart("jump "),
		model.InsertPart(&model.Insert{Shape: model.InsertNumber, Default: 0, Name: "height"}),
	})
	cat.AddScript(model.NewScript(model.Pt(0, 200),
		testutil.Block(t, reg, "procDef", jump),
		testutil.Block(t, reg, "forward:", 10),
	))
	call := model.NewBlockOfType(jump, 5)
	cat.Scripts[0].Append(call)

	t.Run("formats with custom blocks keep them", func(t *testing.T) {
		q := p.Copy()
		notices, err := Normalize(ctx, q, reg)
		require.NoError(t, err)
		assert.Empty(t, notices)
	})

	t.Run("other formats fail instead of dropping the script", func(t *testing.T) {
		q := p.Copy()
		_, err := Convert(ctx, q, reg, testutil.Beta)
		var nse *model.BlockNotSupportedError
		require.True(t, errors.As(err, &nse), "got %v", err)
		assert.Equal(t, testutil.Beta, nse.Format)
		assert.Contains(t, nse.Reason, feature.CustomBlocks)
		assert.Len(t, q.Sprite("Cat").Scripts, 2, "nothing was removed")
	})
}

func TestConvert_BlockWorkaround(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := model.NewProject()
	p.Format = testutil.Beta

	body := testutil.Block(t, reg, "turnRight:", 15)
	loop := testutil.Block(t, reg, "doForeverIf", true, []*model.Block{
		testutil.Block(t, reg, "say:", "ouch"),
	})
	loop.Comment = "keep me"
	p.Stage.AddScript(model.NewScript(nil, testutil.Block(t, reg, "whenGreenFlag"), loop))
	_, err := Normalize(ctx, p, reg)
	require.NoError(t, err)

	notices, err := Convert(ctx, p, reg, testutil.Alpha)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Empty(t, notices[0].Feature)

	rewritten := p.Stage.Scripts[0].At(1)
	assert.Same(t, notices[0].Object, rewritten)
	assert.Equal(t, "doForever", rewritten.Command())
	assert.Equal(t, "keep me", rewritten.Comment)
	inner := rewritten.Arg(0).([]*model.Block)
	require.Len(t, inner, 1)
	assert.Equal(t, "doIf", inner[0].Command())
	assert.Equal(t, true, inner[0].Arg(0))

	t.Run("a type without a workaround still fails", func(t *testing.T) {
		p.Stage.Scripts[0].Append(body)
		_, err := Convert(ctx, p, reg, testutil.Alpha)
		var nse *model.BlockNotSupportedError
		require.True(t, errors.As(err, &nse))
		assert.Same(t, body, nse.Block)
	})
}

func TestConvert_FeatureWorkarounds(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)

	t.Run("stage variables move to the globals", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		p.Format = testutil.Beta
		lives := model.NewVariable(3)
		p.Stage.Variables["lives"] = lives
		p.Stage.Lists["queue"] = model.NewList()
		w := p.AddWatcher(model.NewWatcher(p.Stage, testutil.Block(t, reg, model.CommandReadVariable, "lives")))
		_, err := Normalize(ctx, p, reg)
		require.NoError(t, err)

		notices, err := Convert(ctx, p, reg, testutil.Alpha)
		require.NoError(t, err)
		require.Len(t, notices, 2)
		for _, n := range notices {
			assert.Equal(t, feature.StageVariables, n.Feature)
		}
		assert.Same(t, lives, p.Variables["lives"])
		assert.Empty(t, p.Stage.Variables)
		assert.Empty(t, p.Stage.Lists)
		assert.Equal(t, model.VariableOwner(p), w.Target)
		assert.Same(t, lives, w.Value())
	})

	t.Run("cloud variables become local", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		p.Variables["☁ best"] = &model.Variable{Value: 0, IsCloud: true}
		set := testutil.Block(t, reg, "setVar:to:", "☁ best", 10)
		p.Stage.Scripts[0].Append(set)
		_, err := Normalize(ctx, p, reg)
		require.NoError(t, err)

		notices, err := Convert(ctx, p, reg, testutil.Beta)
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, feature.CloudVariables, notices[0].Feature)
		require.Contains(t, p.Variables, "best")
		assert.False(t, p.Variables["best"].IsCloud)
		assert.Equal(t, "best", set.Arg(0))
		assert.Equal(t, "best", p.Variables["best"].Watcher().Name())
	})

	t.Run("cloud lists become local", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		items := p.Lists["items"]
		items.IsCloud = true

		notices, err := Convert(ctx, p, reg, testutil.Beta)
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, feature.CloudVariables, notices[0].Feature)
		assert.Contains(t, notices[0].Object, `list "items"`)
		assert.Same(t, items, p.Lists["items"])
		assert.False(t, items.IsCloud)
	})

	t.Run("vector costumes are rasterized", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		cat := p.Sprite("Cat")
		svg, err := model.NewCostume("vector", media.NewImage([]byte(redSquare), media.SVG))
		require.NoError(t, err)
		cat.Costumes = append(cat.Costumes, svg)

		notices, err := Convert(ctx, p, reg, testutil.Beta)
		require.NoError(t, err)
		require.Len(t, notices, 1)
		assert.Equal(t, feature.VectorImages, notices[0].Feature)
		assert.Same(t, svg, notices[0].Object)
		assert.Equal(t, media.PNG, svg.Image.Format())
	})
}

func TestNormalize_CloudNaming(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	p.Variables["score"].IsCloud = true

	notices, err := Normalize(ctx, p, reg)
	require.NoError(t, err)
	assert.Empty(t, notices, "normalization is not a workaround")

	require.Contains(t, p.Variables, "☁ score")
	assert.NotContains(t, p.Variables, "score")
	assert.Equal(t, "☁ score", p.Variables["☁ score"].Watcher().Name())
	set := p.Sprite("Cat").Scripts[0].At(2)
	assert.Equal(t, "☁ score", set.Arg(0))

	t.Run("lists", func(t *testing.T) {
		p.Lists["items"].IsCloud = true
		_, err := Normalize(ctx, p, reg)
		require.NoError(t, err)
		require.Contains(t, p.Lists, "☁ items")
		assert.NotContains(t, p.Lists, "items")
		assert.Equal(t, "☁ items", p.Lists["☁ items"].Watcher().Name())
	})
}

func TestConvert_LeavesCopiesIndependent(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	before := snapshot(p)

	q := p.Copy()
	_, err := Convert(ctx, q, reg, testutil.Beta)
	require.NoError(t, err)

	assert.Equal(t, before, snapshot(p))
	assert.Len(t, p.Watchers(), 1)
	assert.Len(t, q.Watchers(), 3)
}
