package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newBlocksCommand(c *command) *cobra.Command {
	var formatName string
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the known block types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := c.app.Registry()
			types := reg.BlockTypes()
			if formatName != "" {
				if _, err := reg.Format(formatName); err != nil {
					return usageError(err)
				}
				types = reg.BlockTypesFor(formatName)
			}

			table := newTable(c.outW, "COMMAND", "CATEGORY", "SHAPE", "TEXT", "FORMATS")
			for _, bt := range types {
				command := bt.Command()
				if formatName != "" {
					pbt, err := bt.Convert(formatName)
					if err != nil {
						return failed(err)
					}
					command = pbt.Command
				}
				table.Append([]string{command, bt.Default().Category, string(bt.Shape()), bt.Text(), strings.Join(bt.Formats(), ",")})
			}
			table.Render()
			fmt.Fprintf(c.outW, "\n%d block types\n", len(types))
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Only list blocks of this format, with its spelling.")
	return cmd
}

func newFormatsCommand(c *command) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported project formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := c.app.Registry()
			table := newTable(c.outW, "NAME", "DESCRIPTION", "EXTENSION", "FEATURES", "BLOCKS")
			for _, f := range reg.Formats() {
				table.Append([]string{
					f.Name(),
					f.DisplayName(),
					f.Extension(),
					strings.Join(f.Features(), ","),
					fmt.Sprint(len(reg.BlockTypesFor(f.Name()))),
				})
			}
			table.Render()
			return nil
		},
	}
}
