package feature_test

import (
	"testing"

	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyAll(t *testing.T, fixes []feature.Fix) {
	t.Helper()
	for _, fix := range fixes {
		require.NoError(t, fix.Apply())
	}
}

func TestVector(t *testing.T) {
	reg := testutil.NewRegistry(t)
	p := testutil.SampleProject(t, reg)
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4"><rect width="4" height="4"/></svg>`
	costume, err := model.NewCostume("vec", media.NewImage([]byte(svg), media.SVG))
	require.NoError(t, err)
	p.Stage.Costumes = append(p.Stage.Costumes, costume)

	fixes := feature.Vector{}.Workaround(p)
	require.Len(t, fixes, 1, "raster costumes need no fix")
	assert.Same(t, costume, fixes[0].Object)
	assert.True(t, costume.Image.IsVector(), "listing fixes changes nothing")

	applyAll(t, fixes)
	assert.Equal(t, media.PNG, costume.Image.Format())
	assert.Empty(t, feature.Vector{}.Workaround(p))
}

func TestStageVars(t *testing.T) {
	reg := testutil.NewRegistry(t)

	t.Run("clashing names keep the global", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		global := p.Variables["score"]
		p.Stage.Variables["score"] = model.NewVariable(7)
		stageWatcher := p.AddWatcher(model.NewWatcher(p.Stage, testutil.Block(t, reg, model.CommandReadVariable, "score")))
		actors := len(p.Actors)

		fixes := feature.StageVars{}.Workaround(p)
		require.Len(t, fixes, 1)
		assert.Contains(t, fixes[0].Detail, "dropped")
		applyAll(t, fixes)

		assert.Same(t, global, p.Variables["score"])
		assert.Empty(t, p.Stage.Variables)
		assert.Len(t, p.Actors, actors-1)
		assert.NotContains(t, p.Watchers(), stageWatcher)
	})

	t.Run("lists move with their watcher", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		queue := model.NewList("x")
		p.Stage.Lists["queue"] = queue
		w := p.AddWatcher(model.NewWatcher(p.Stage, testutil.Block(t, reg, model.CommandContentsOfList, "queue")))

		applyAll(t, feature.StageVars{}.Workaround(p))
		assert.Same(t, queue, p.Lists["queue"])
		assert.True(t, w.Target == model.VariableOwner(p))
		assert.Same(t, queue, w.Value())
	})
}

func TestCloud(t *testing.T) {
	reg := testutil.NewRegistry(t)

	t.Run("normalize renames references but not shadowed ones", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		p.Variables["speed"] = &model.Variable{Value: 0, IsCloud: true}
		stageSet := testutil.Block(t, reg, "setVar:to:", "speed", 1)
		p.Stage.Scripts[0].Append(stageSet)

		require.NoError(t, feature.Cloud{}.Normalize(p))
		assert.Contains(t, p.Variables, feature.CloudPrefix+"speed")
		assert.Equal(t, feature.CloudPrefix+"speed", stageSet.Arg(0))

		catScript := p.Sprite("Cat").Scripts[0]
		read := catScript.At(1).Arg(0).(*model.Block)
		assert.Equal(t, "speed", read.Arg(0), "the sprite's own speed shadows the global")

		require.NoError(t, feature.Cloud{}.Normalize(p), "normalizing twice is harmless")
		assert.Contains(t, p.Variables, feature.CloudPrefix+"speed")
	})

	t.Run("normalize refuses to merge two variables", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		p.Variables["x"] = &model.Variable{IsCloud: true}
		p.Variables[feature.CloudPrefix+"x"] = model.NewVariable(1)
		var serr *model.StructuralInvariantError
		assert.ErrorAs(t, feature.Cloud{}.Normalize(p), &serr)
	})

	t.Run("workaround keeps the prefix when the plain name is taken", func(t *testing.T) {
		p := testutil.SampleProject(t, reg)
		p.Variables[feature.CloudPrefix+"score"] = &model.Variable{IsCloud: true}

		fixes := feature.Cloud{}.Workaround(p)
		require.Len(t, fixes, 1)
		applyAll(t, fixes)
		v := p.Variables[feature.CloudPrefix+"score"]
		require.NotNil(t, v)
		assert.False(t, v.IsCloud)
		assert.Empty(t, feature.Cloud{}.Workaround(p))
	})
}

func TestCustom(t *testing.T) {
	p := model.NewProject()
	assert.Empty(t, feature.Custom{}.Workaround(p))
	assert.NoError(t, feature.Custom{}.Normalize(p))
	assert.Equal(t, feature.CustomBlocks, feature.Custom{}.Name())
}
