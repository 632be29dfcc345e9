package report

import (
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/hupe1980/ocp2aks/internal/convert"
)

// PrintSummary writes the run counters as a table followed by the warning
// count. Colors are disabled when noColor is set.
func PrintSummary(w io.Writer, s *Summary, noColor bool) {
	rows := make([][]string, 0, len(convert.Categories())+1)

	for _, c := range convert.Categories() {
		rows = append(rows, []string{c.String(), outcomeLabel(c), strconv.Itoa(s.Count(c))})
	}

	rows = append(rows, []string{"Total", "converted", strconv.Itoa(s.Converted())})

	PrintTable(w, []string{"kind", "action", "count"}, rows)

	warn := color.New(color.FgYellow)
	ok := color.New(color.FgGreen)

	if noColor {
		warn.DisableColor()
		ok.DisableColor()
	}

	if n := len(s.warnings); n > 0 {
		_, _ = warn.Fprintf(w, "%d warning(s), see the report for details\n", n)
		return
	}

	_, _ = ok.Fprintln(w, "no warnings")
}

// PrintTable renders rows as a borderless, left-aligned table.
func PrintTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

func outcomeLabel(c convert.Category) string {
	switch c {
	case convert.CategoryDeploymentConfig, convert.CategoryRoute:
		return "converted"
	case convert.CategoryBuildConfig:
		return "skipped"
	default:
		return "passed through"
	}
}
