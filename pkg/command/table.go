package command

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// renderTable lays rows out as a borderless monospace table wrapped in a Markdown code block
func renderTable(header []string, rows [][]string, alignment []int) string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)

	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetColumnAlignment(alignment)
	table.AppendBulk(rows)
	table.Render()

	return "```\n" + strings.TrimRight(tableString.String(), "\n") + "\n```"
}
