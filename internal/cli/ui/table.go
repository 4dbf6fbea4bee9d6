package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

// NewTable creates a new table with consistent styling
func NewTable(headers ...interface{}) table.Table {
	tbl := table.New(headers...)

	// Only the first column (index) is bold
	tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
		return SubjectStyle.Render(fmt.Sprintf(format, vals...))
	})

	tbl.WithPadding(2)

	// lipgloss.Width ignores ANSI codes
	tbl.WithWidthFunc(lipgloss.Width)

	return tbl
}
