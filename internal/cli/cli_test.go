package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/scratchkit/internal/app"
	"github.com/specialistvlad/scratchkit/internal/cli"
	"github.com/specialistvlad/scratchkit/internal/feature"
	"github.com/specialistvlad/scratchkit/internal/model"
	"github.com/specialistvlad/scratchkit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outW, errW bytes.Buffer
	err := cli.Execute(context.Background(), args, &outW, &errW)
	return outW.String(), errW.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *cli.ExitError {
	t.Helper()
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code, exitErr.Message)
	return exitErr
}

// writeProjects saves the shared sample project as sample.sb2 and a project
// with a stage variable as stagevars.sksnap into dir.
func writeProjects(t *testing.T, dir string) {
	t.Helper()
	a := app.New(&testutil.SafeBuffer{}, &app.Config{LogLevel: "error", LogFormat: "text", Workers: 1})
	ctx := context.Background()

	_, err := a.Save(ctx, testutil.SampleProject(t, a.Registry()), filepath.Join(dir, "sample.sb2"))
	require.NoError(t, err)

	p := model.NewProject()
	p.Name = "stagevars"
	p.Stage.Variables["lives"] = model.NewVariable(3)
	_, err = a.Save(ctx, p, filepath.Join(dir, "stagevars.sksnap"))
	require.NoError(t, err)
}

func TestExecute_Usage(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		out, _, err := execute(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "convert-dir")
	})

	t.Run("unknown command", func(t *testing.T) {
		_, _, err := execute(t, "explode")
		requireExitCode(t, err, 2)
	})

	t.Run("missing arguments", func(t *testing.T) {
		_, _, err := execute(t, "convert", "only-one.sb2")
		requireExitCode(t, err, 2)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, _, err := execute(t, "formats", "--log-level", "chatty")
		exitErr := requireExitCode(t, err, 2)
		assert.Contains(t, exitErr.Message, "log level")
	})
}

func TestExecute_Listings(t *testing.T) {
	t.Run("formats", func(t *testing.T) {
		out, _, err := execute(t, "formats", "--log-level", "error")
		require.NoError(t, err)
		for _, want := range []string{"scratch20", "Scratch 2.0", ".sb2", "scratch14", ".sb", "snapshot", ".sksnap"} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("blocks in a format's spelling", func(t *testing.T) {
		out, _, err := execute(t, "blocks", "--format", "scratch14", "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "showBackground:")
		assert.Contains(t, out, "126 block types")
	})

	t.Run("blocks of an unknown format", func(t *testing.T) {
		_, _, err := execute(t, "blocks", "-f", "scratch99", "--log-level", "error")
		requireExitCode(t, err, 2)
	})
}

func TestExecute_ConvertAndInspect(t *testing.T) {
	dir := t.TempDir()
	writeProjects(t, dir)

	t.Run("convert", func(t *testing.T) {
		dst := filepath.Join(dir, "sample.sksnap")
		out, _, err := execute(t, "convert", filepath.Join(dir, "sample.sb2"), dst)
		require.NoError(t, err)
		assert.Contains(t, out, "->")
		assert.FileExists(t, dst)
	})

	t.Run("convert reports notices", func(t *testing.T) {
		_, errOut, err := execute(t, "convert", filepath.Join(dir, "stagevars.sksnap"), filepath.Join(dir, "stagevars.sb2"))
		require.NoError(t, err)
		assert.Contains(t, errOut, "["+feature.StageVariables+"]")
	})

	t.Run("convert failure", func(t *testing.T) {
		_, _, err := execute(t, "convert", filepath.Join(dir, "missing.sb2"), filepath.Join(dir, "missing.sksnap"))
		requireExitCode(t, err, 1)
	})

	t.Run("inspect as json", func(t *testing.T) {
		out, _, err := execute(t, "inspect", filepath.Join(dir, "sample.sb2"), "-o", "json", "--log-level", "error")
		require.NoError(t, err)
		var s app.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, "sample", s.Name)
		assert.Equal(t, "scratch20", s.Format)
		require.Len(t, s.Sprites, 1)
		assert.Equal(t, "Cat", s.Sprites[0].Name)
	})

	t.Run("inspect as yaml", func(t *testing.T) {
		out, _, err := execute(t, "inspect", filepath.Join(dir, "sample.sb2"), "--output", "yaml", "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "name: sample\n")
		assert.Contains(t, out, "format: scratch20\n")
	})

	t.Run("inspect as text", func(t *testing.T) {
		out, _, err := execute(t, "inspect", filepath.Join(dir, "sample.sb2"), "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "Name:      sample")
		assert.Contains(t, out, "Cat")
	})

	t.Run("inspect with a bad output", func(t *testing.T) {
		_, _, err := execute(t, "inspect", filepath.Join(dir, "sample.sb2"), "-o", "xml")
		requireExitCode(t, err, 2)
	})
}

func TestExecute_ConvertDir(t *testing.T) {
	t.Run("needs a format", func(t *testing.T) {
		_, _, err := execute(t, "convert-dir", t.TempDir(), "--log-level", "error")
		requireExitCode(t, err, 2)
	})

	t.Run("format from the settings file", func(t *testing.T) {
		dir := t.TempDir()
		writeProjects(t, dir)
		out := t.TempDir()
		settings := filepath.Join(t.TempDir(), "scratchkit.toml")
		require.NoError(t, os.WriteFile(settings, []byte("default_format = \"snapshot\"\nlog_level = \"error\"\n"), 0o644))

		stdout, _, err := execute(t, "convert-dir", dir, "--config", settings, "--output-dir", out)
		require.NoError(t, err)
		assert.Contains(t, stdout, "sample.sb2")
		assert.FileExists(t, filepath.Join(out, "sample.sksnap"))
	})

	t.Run("reports failed files", func(t *testing.T) {
		dir := t.TempDir()
		writeProjects(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sb2"), []byte("not a zip"), 0o644))

		_, errOut, err := execute(t, "convert-dir", dir, "-f", "snapshot", "--log-level", "error")
		exitErr := requireExitCode(t, err, 1)
		assert.Equal(t, "1 of 2 projects failed to convert", exitErr.Message)
		assert.Contains(t, errOut, "broken.sb2")
	})

	t.Run("unknown settings keys", func(t *testing.T) {
		settings := filepath.Join(t.TempDir(), "scratchkit.toml")
		require.NoError(t, os.WriteFile(settings, []byte("colour = \"red\"\n"), 0o644))
		_, _, err := execute(t, "formats", "--config", settings)
		requireExitCode(t, err, 2)
	})
}
