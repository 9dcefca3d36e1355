package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <source> <destination>",
		Short: "Convert a project to the format of the destination's extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notices, err := c.app.Convert(cmd.Context(), args[0], args[1])
			if err != nil {
				return failed(err)
			}
			printNotices(c.errW, args[0], notices)
			fmt.Fprintf(c.outW, "%s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConvertDirCommand(c *command) *cobra.Command {
	var (
		formatName string
		outputDir  string
	)
	cmd := &cobra.Command{
		Use:   "convert-dir <dir>",
		Short: "Convert every project below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatName == "" {
				formatName = c.defaultFormat
			}
			if formatName == "" {
				return usageError(fmt.Errorf("no target format: pass --format or set default_format"))
			}
			if cmd.Flags().Changed("output-dir") {
				c.app.SetOutputDir(outputDir)
			}

			results, err := c.app.ConvertDir(cmd.Context(), args[0], formatName)
			if err != nil {
				return failed(err)
			}
			var failures int
			for _, r := range results {
				if r.Err != nil {
					failures++
					printFailure(c.errW, r.Source, r.Err)
					continue
				}
				printNotices(c.errW, r.Source, r.Notices)
				fmt.Fprintf(c.outW, "%s -> %s\n", r.Source, r.Target)
			}
			if failures > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d projects failed to convert", failures, len(results))}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Target format name. Defaults to default_format from the settings file.")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory receiving converted projects. Defaults to next to each source.")
	return cmd
}
