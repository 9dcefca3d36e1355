package testutil

import (
	"image/color"
	"testing"

	"github.com/specialistvlad/scratchkit/internal/media"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/stretchr/testify/require"
)

// Block resolves id through r and fails the test on error.
func Block(t *testing.T, r model.Resolver, id any, args ...any) *model.Block {
	t.Helper()
	b, err := model.NewBlock(r, id, args...)
	require.NoError(t, err)
	return b
}

// SampleProject builds a small project in the shared vocabulary of the toy
// formats:
//
//   - a global variable "score" shown by a watcher, and a global list "items";
//   - a stage script broadcasting "go";
//   - a sprite "Cat" with a local variable "speed", a 2x2 costume and one
//     script that moves, sets the score and says hi forever.
func SampleProject(t *testing.T, r model.Resolver) *model.Project {
	t.Helper()
	p := model.NewProject()
	p.Name = "sample"
	p.Format = Alpha

	p.Variables["score"] = model.NewVariable(0)
	p.Lists["items"] = model.NewList("a", "b")
	p.AddWatcher(model.NewWatcher(p, Block(t, r, model.CommandReadVariable, "score")))

	p.Stage.AddScript(model.NewScript(model.Pt(0, 0),
		Block(t, r, "whenGreenFlag"),
		Block(t, r, "broadcast:", "go"),
	))

	cat, err := p.AddSprite("Cat")
	require.NoError(t, err)
	cat.Variables["speed"] = model.NewVariable(5)
	costume, err := model.NewCostume("cat", media.Solid(2, 2, color.Black))
	require.NoError(t, err)
	cat.Costumes = append(cat.Costumes, costume)
	cat.Costume = costume

	cat.AddScript(model.NewScript(model.Pt(10, 20),
		Block(t, r, "whenGreenFlag"),
		Block(t, r, "forward:", Block(t, r, model.CommandReadVariable, "speed")),
		Block(t, r, "setVar:to:", "score", 1),
		Block(t, r, "doForever", []*model.Block{Block(t, r, "say:", "hi")}),
	))
	return p
}
