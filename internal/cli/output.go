package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/specialistvlad/scratchkit/internal/model"
)

var (
	noticeColor  = color.New(color.FgYellow)
	featureColor = color.New(color.FgCyan)
	failureColor = color.New(color.FgRed, color.Bold)
)

// printNotices lists what a conversion changed, one line per notice.
func printNotices(w io.Writer, source string, notices []model.Notice) {
	for _, n := range notices {
		noticeColor.Fprint(w, "notice")
		fmt.Fprintf(w, " %s: ", source)
		if n.Feature != "" {
			featureColor.Fprintf(w, "[%s] ", n.Feature)
		}
		fmt.Fprintf(w, "%v", n.Object)
		if n.Detail != "" {
			fmt.Fprintf(w, " (%s)", n.Detail)
		}
		fmt.Fprintln(w)
	}
}

func printFailure(w io.Writer, source string, err error) {
	failureColor.Fprint(w, "failed")
	fmt.Fprintf(w, " %s: %v\n", source, err)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}
