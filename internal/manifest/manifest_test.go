package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `
block "say:duration:elapsed:from:" {
  category = "looks"
  shape    = "stack"
  text     = "say %s for %n secs"
  defaults = ["Hello!", 2]
}

block "readVariable" {
  category = "variables"
  shape    = "reporter"
  text     = "%i.var"
  defaults = ["var"]
}

block "doIf" {
  category = "control"
  shape    = "stack"
  text     = "if %b then%S"
}

block "%" {
  category = "operators"
  shape    = "reporter"
  text     = "%n mod %n"
  match    = "computeFunction:of:"
}

block "setPenHueTo:" {
  category = "pen"
  shape    = "stack"
  text     = "set pen color to %c at 100%%"
  defaults = ["#0f0"]
}

block "keyPressed:" {
  category = "sensing"
  shape    = "boolean"
  text     = "key %m.key pressed?"
  defaults = ["space"]
}
`
	types, err := Parse("blocks.hcl", []byte(src))
	require.NoError(t, err)
	require.Len(t, types, 6)

	say := types[0]
	assert.Equal(t, "say:duration:elapsed:from:", say.Command)
	assert.Equal(t, "looks", say.Category)
	assert.Equal(t, model.StackShape, say.Shape())
	assert.Equal(t, "say %s for %s secs", say.Text())
	assert.Equal(t, []any{"Hello!", 2}, say.Defaults())

	readVar := types[1]
	require.Len(t, readVar.Inserts(), 1)
	assert.Equal(t, model.InsertInline, readVar.Inserts()[0].Shape)
	assert.Equal(t, "var", readVar.Inserts()[0].Kind)

	doIf := types[2]
	inserts := doIf.Inserts()
	require.Len(t, inserts, 2)
	assert.Equal(t, model.InsertBoolean, inserts[0].Shape)
	assert.Equal(t, model.InsertStack, inserts[1].Shape)
	assert.True(t, inserts[1].Unevaluated)

	mod := types[3]
	assert.Equal(t, "computeFunction:of:", mod.Match)
	assert.Equal(t, []any{0, 0}, mod.Defaults())

	pen := types[4]
	assert.Equal(t, "set pen color to %s at 100%", pen.Text())
	assert.Equal(t, []any{model.Color{G: 0xff}}, pen.Defaults())

	key := types[5]
	assert.Equal(t, model.BooleanShape, key.Shape())
	assert.Equal(t, model.InsertReadonlyMenu, key.Inserts()[0].Shape)
	assert.Equal(t, "key", key.Inserts()[0].Kind)
}

func TestParse_Diagnostics(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		summary string
	}{
		{
			name:    "unknown shape",
			body:    "category = \"c\"\n" +
				"shape = \"round\"\n" +
				"text = \"x\"\n",
			summary: "Unsupported block shape",
		},
		{
			name:    "unknown placeholder",
			body:    "category = \"c\"\n" +
				"shape = \"stack\"\n" +
				"text = \"go %q\"\n",
			summary: "Unknown placeholder",
		},
		{
			name:    "too many defaults",
			body:    "category = \"c\"\n" +
				"shape = \"stack\"\n" +
				"text = \"go %n\"\n" +
				"defaults = [1, 2]\n",
			summary: "Too many defaults",
		},
		{
			name:    "stack default",
			body:    "category = \"c\"\n" +
				"shape = \"stack\"\n" +
				"text = \"forever%S\"\n" +
				"defaults = [\"no\"]\n",
			summary: "Invalid default value",
		},
		{
			name:    "bad color",
			body:    "category = \"c\"\n" +
				"shape = \"stack\"\n" +
				"text = \"pen %c\"\n" +
				"defaults = [\"red\"]\n",
			summary: "Invalid default value",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := "block \"x\" {\n" + tc.body + "}\n"
			_, err := Parse("bad.hcl", []byte(src))
			require.Error(t, err)
			var diags hcl.Diagnostics
			require.ErrorAs(t, err, &diags)
			require.NotEmpty(t, diags)
			assert.Equal(t, tc.summary, diags[0].Summary)
			assert.Equal(t, "bad.hcl", diags[0].Subject.Filename)
		})
	}

	t.Run("syntax error", func(t *testing.T) {
		_, err := Parse("broken.hcl", []byte(`block "x" {`))
		require.Error(t, err)
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
block "extra" {
  category = "extension"
  shape    = "stack"
  text     = "do extra"
}
`), 0o600))

	types, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "extra", types[0].Command)
}
