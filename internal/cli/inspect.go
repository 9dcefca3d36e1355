package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/scratchkit/internal/app"
)

func newInspectCommand(c *command) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect <project>",
		Short: "Summarize a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "yaml", "json":
			default:
				return usageError(fmt.Errorf("invalid output '%s': must be text, yaml or json", output))
			}
			p, notices, err := c.app.Load(cmd.Context(), args[0])
			if err != nil {
				return failed(err)
			}
			printNotices(c.errW, args[0], notices)
			return failed(writeSummary(c.outW, app.Summarize(p), output))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format. Options: text, yaml, json.")
	return cmd
}

func writeSummary(w io.Writer, s *app.Summary, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		writeSummaryText(w, s)
		return nil
	}
	return fmt.Errorf("unknown output '%s'", output)
}

func writeSummaryText(w io.Writer, s *app.Summary) {
	fmt.Fprintf(w, "Name:      %s\n", s.Name)
	fmt.Fprintf(w, "Format:    %s\n", s.Format)
	if s.Author != "" {
		fmt.Fprintf(w, "Author:    %s\n", s.Author)
	}
	fmt.Fprintf(w, "Tempo:     %g\n", s.Tempo)
	fmt.Fprintf(w, "Variables: %s\n", strings.Join(s.Variables, ", "))
	fmt.Fprintf(w, "Lists:     %s\n", strings.Join(s.Lists, ", "))
	fmt.Fprintf(w, "Watchers:  %d\n\n", len(s.Watchers))

	table := newTable(w, "OBJECT", "COSTUMES", "SOUNDS", "SCRIPTS", "BLOCKS", "VARIABLES")
	for _, obj := range append([]app.ObjectSummary{s.Stage}, s.Sprites...) {
		table.Append([]string{
			obj.Name,
			fmt.Sprint(obj.Costumes),
			fmt.Sprint(obj.Sounds),
			fmt.Sprint(obj.Scripts),
			fmt.Sprint(obj.Blocks),
			strings.Join(append(obj.Variables, obj.Lists...), ", "),
		})
	}
	table.Render()
}
