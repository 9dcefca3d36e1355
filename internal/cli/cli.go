package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/scratchkit/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks errors caused by bad arguments, which exit with code 2.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// command carries what every subcommand needs once flags are parsed.
type command struct {
	outW io.Writer
	errW io.Writer
	opts options
	app  *app.App
	// defaultFormat is the settings file's default_format.
	defaultFormat string
}

// Execute runs the command line given by args. Normal output goes to outW;
// logs and notices go to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	slog.Debug("CLI parser started.")
	root := newRootCommand(outW, errW)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra returns on its own is an argument or flag problem.
	if !errors.As(err, new(*runError)) {
		return usageError(err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// runError wraps failures of a command's work, as opposed to its arguments.
type runError struct{ err error }

func (e *runError) Error() string { return e.err.Error() }
func (e *runError) Unwrap() error { return e.err }

func failed(err error) error {
	if err == nil {
		return nil
	}
	return &runError{err: err}
}

func newRootCommand(outW, errW io.Writer) *cobra.Command {
	c := &command{outW: outW, errW: errW}
	root := &cobra.Command{
		Use:   "scratchkit",
		Short: "Convert and inspect Scratch projects",
		Long: `scratchkit reads Scratch 2.0 (.sb2), Scratch 1.4 (.sb) and snapshot
(.sksnap) projects, converts them between formats and reports what
had to change along the way.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	c.opts.register(root)

	root.AddCommand(
		newConvertCommand(c),
		newConvertDirCommand(c),
		newInspectCommand(c),
		newBlocksCommand(c),
		newFormatsCommand(c),
	)
	return root
}

// setup builds the configuration and the application.
func (c *command) setup(cmd *cobra.Command) error {
	cfg, file, err := c.opts.config(cmd)
	if err != nil {
		return err
	}
	c.defaultFormat = file.DefaultFormat
	c.app = app.New(c.errW, cfg)
	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return nil
}
