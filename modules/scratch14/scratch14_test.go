package scratch14_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/format"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/pipeline"
	"github.com/specialistvlad/scratchkit/internal/registry"
	"github.com/specialistvlad/scratchkit/internal/testutil"
	"github.com/specialistvlad/scratchkit/modules/compat"
	"github.com/specialistvlad/scratchkit/modules/scratch14"
	"github.com/specialistvlad/scratchkit/modules/scratch20"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nameCodec stores only the project name after the file header.
type nameCodec struct{}

func (nameCodec) Decode(_ context.Context, r io.Reader) (*model.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := model.NewProject()
	p.Name = strings.TrimPrefix(string(data), "ScratchV02")
	return p, nil
}

func (nameCodec) Encode(_ context.Context, w io.Writer, p *model.Project) error {
	_, err := io.WriteString(w, "ScratchV02"+p.Name)
	return err
}

func newRegistry(t *testing.T, codec scratch14.Codec) *registry.Registry {
	t.Helper()
	r := registry.New()
	r.Register(&compat.Module{}, &scratch20.Module{}, &scratch14.Module{Codec: codec})
	ctx, _ := testutil.Context(t)
	require.NoError(t, r.Validate(ctx))
	return r
}

func TestModule_Vocabulary(t *testing.T) {
	r := newRegistry(t, nil)

	plugin, err := r.FormatByExtension(".sb")
	require.NoError(t, err)
	assert.Equal(t, scratch14.Name, plugin.Name())
	assert.Equal(t, []string{feature.StageVariables}, plugin.Features())
	assert.Len(t, r.BlockTypesFor(scratch14.Name), 126)

	t.Run("renamed blocks share the 2.0 type", func(t *testing.T) {
		testCases := []struct{ old, current string }{
			{"showBackground:", "startScene"},
			{"nextBackground", "nextScene"},
			{"drum:duration:elapsed:from:", "playDrum"},
			{"midiInstrument:", "instrument:"},
			{"forward:", "forward:"},
			{"backgroundIndex", "backgroundIndex"},
		}
		for _, tc := range testCases {
			bt, err := r.ResolveCommand(scratch14.Name, tc.old)
			require.NoError(t, err, tc.old)
			assert.Equal(t, tc.current, bt.Command(), "2.0 spelling is the default")

			pbt, err := r.Convert(bt, scratch14.Name)
			require.NoError(t, err)
			assert.Equal(t, tc.old, pbt.Command)
		}
	})

	t.Run("loose 1.4 text resolves", func(t *testing.T) {
		bt, err := r.ResolveBlockType("switch to background %s")
		require.NoError(t, err)
		assert.Equal(t, "startScene", bt.Command())
	})

	t.Run("1.4-only blocks", func(t *testing.T) {
		for _, cmd := range []string{"stopAll", "doReturn", "doForeverIf", "isLoud", "sensor:", "allMotorsOn"} {
			bt, err := r.ResolveBlockType(cmd)
			require.NoError(t, err, cmd)
			assert.Equal(t, []string{scratch14.Name}, bt.Formats(), cmd)
		}
		stage, err := r.ResolveBlockType("stopScripts")
		require.NoError(t, err)
		assert.False(t, stage.HasConversion(scratch14.Name))
	})
}

func TestPlugin_WithoutCodec(t *testing.T) {
	r := newRegistry(t, nil)
	ctx, _ := testutil.Context(t)
	plugin, err := r.Format(scratch14.Name)
	require.NoError(t, err)

	_, err = plugin.Load(ctx, strings.NewReader("ScratchV02"))
	assert.True(t, errors.Is(err, format.ErrCodecUnavailable))

	err = plugin.Save(ctx, io.Discard, model.NewProject())
	assert.True(t, errors.Is(err, format.ErrCodecUnavailable))
}

func TestPlugin_WithCodec(t *testing.T) {
	r := newRegistry(t, nameCodec{})
	ctx, _ := testutil.Context(t)
	plugin, err := r.Format(scratch14.Name)
	require.NoError(t, err)

	p := model.NewProject()
	p.Name = "maze"
	var buf bytes.Buffer
	require.NoError(t, plugin.Save(ctx, &buf, p))

	loaded, err := plugin.Load(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "maze", loaded.Name)
	assert.Equal(t, scratch14.Name, loaded.Format)

	_, err = plugin.Load(ctx, strings.NewReader("PK\x03\x04 not a 1.4 file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ScratchV0")
}

func TestConvert_ControlBlocks(t *testing.T) {
	r := newRegistry(t, nil)
	ctx, _ := testutil.Context(t)
	block := func(id any, args ...any) *model.Block {
		return testutil.Block(t, r, id, args...)
	}

	t.Run("stop blocks to 1.4", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch20.Name
		p.Stage.AddScript(model.NewScript(model.Pt(0, 0),
			block("whenGreenFlag"),
			block("doIf", block("mousePressed"), []*model.Block{block("stopScripts", "this script")}),
			block("stopScripts", "all"),
		))

		notices, err := pipeline.Convert(ctx, p, r, scratch14.Name)
		require.NoError(t, err)
		script := p.Stage.Scripts[0]
		assert.Equal(t, "stopAll", script.At(2).Command())
		mouth, ok := script.At(1).Arg(1).([]*model.Block)
		require.True(t, ok)
		assert.Equal(t, "doReturn", mouth[0].Command())

		var replaced int
		for _, n := range notices {
			if n.Feature == "" {
				replaced++
			}
		}
		assert.Equal(t, 2, replaced)
	})

	t.Run("stop options without a 1.4 block fail", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch20.Name
		p.Stage.AddScript(model.NewScript(nil, block("stopScripts", "other scripts in sprite")))

		_, err := pipeline.Convert(ctx, p, r, scratch14.Name)
		var nse *model.BlockNotSupportedError
		require.ErrorAs(t, err, &nse)
		assert.Equal(t, scratch14.Name, nse.Format)
	})

	t.Run("1.4 blocks to 2.0", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch14.Name
		p.Stage.AddScript(model.NewScript(model.Pt(0, 0),
			block("whenGreenFlag"),
			block("doForeverIf", block("isLoud"), []*model.Block{block("doReturn")}),
		))
		p.Stage.AddScript(model.NewScript(model.Pt(0, 100), block("whenClicked"), block("stopAll")))

		_, err := pipeline.Convert(ctx, p, r, scratch20.Name)
		var nse *model.BlockNotSupportedError
		require.ErrorAs(t, err, &nse, "isLoud has no 2.0 spelling")
		assert.Equal(t, "isLoud", nse.Type.(*model.BlockType).Command())
	})

	t.Run("forever if to 2.0", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch14.Name
		p.Stage.AddScript(model.NewScript(model.Pt(0, 0),
			block("whenGreenFlag"),
			block("doForeverIf", block("mousePressed"), []*model.Block{block("stopAll")}),
		))

		_, err := pipeline.Convert(ctx, p, r, scratch20.Name)
		require.NoError(t, err)
		forever := p.Stage.Scripts[0].At(1)
		assert.Equal(t, "doForever", forever.Command())
		body := forever.Arg(0).([]*model.Block)
		require.Len(t, body, 1)
		assert.Equal(t, "doIf", body[0].Command())
		inner := body[0].Arg(1).([]*model.Block)
		require.Len(t, inner, 1)
		assert.Equal(t, "stopScripts", inner[0].Command())
		assert.Equal(t, "all", inner[0].Arg(0))
	})
}

func TestConvert_Features(t *testing.T) {
	r := newRegistry(t, nil)
	ctx, _ := testutil.Context(t)

	t.Run("stage variables survive in 1.4 and move in 2.0", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch14.Name
		p.Stage.Variables["lives"] = model.NewVariable(3)

		notices, err := pipeline.Normalize(ctx, p, r)
		require.NoError(t, err)
		assert.Empty(t, notices)
		assert.Contains(t, p.Stage.Variables, "lives")

		notices, err = pipeline.Convert(ctx, p, r, scratch20.Name)
		require.NoError(t, err)
		assert.NotContains(t, p.Stage.Variables, "lives")
		assert.Contains(t, p.Variables, "lives")
		require.NotEmpty(t, notices)
		assert.Equal(t, feature.StageVariables, notices[0].Feature)
	})

	t.Run("cloud variables become plain", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch20.Name
		hs := model.NewVariable(0)
		hs.IsCloud = true
		p.Variables["☁ hs"] = hs

		notices, err := pipeline.Convert(ctx, p, r, scratch14.Name)
		require.NoError(t, err)
		assert.Contains(t, p.Variables, "hs")
		assert.False(t, p.Variables["hs"].IsCloud)

		var cloud int
		for _, n := range notices {
			if n.Feature == feature.CloudVariables {
				cloud++
			}
		}
		assert.Equal(t, 1, cloud)
	})

	t.Run("custom blocks are rejected", func(t *testing.T) {
		p := model.NewProject()
		p.Format = scratch20.Name
		ct := model.NewCustomBlockType(model.StackShape, []model.Part{model.TextPart("jump")})
		p.Stage.AddScript(model.NewScript(nil, testutil.Block(t, r, "procDef", ct)))

		_, err := pipeline.Convert(ctx, p, r, scratch14.Name)
		var nse *model.BlockNotSupportedError
		require.ErrorAs(t, err, &nse)
		assert.Contains(t, nse.Reason, feature.CustomBlocks)
	})
}
