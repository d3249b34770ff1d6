package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table with the CLI styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selectable in CLI output.
	s.Selected = s.Cell
	t.SetStyles(s)
	// header row plus its bottom border
	t.SetHeight(len(rows) + 2)
	return t
}

// RenderSimpleTable renders a non-interactive table string. Column widths
// grow to fit the widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := append([]TableColumn(nil), columns...)
	for i := range cols {
		cols[i].Width = max(cols[i].Width, lipgloss.Width(cols[i].Title))
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		for j, cell := range row {
			if j < len(cols) {
				cols[j].Width = max(cols[j].Width, lipgloss.Width(cell))
			}
		}
		tableRows[i] = table.Row(row)
	}

	return NewTable(cols, tableRows).View()
}

// NodeRow is one line of the node table.
type NodeRow struct {
	ID     int
	Name   string
	CPU    string
	RAM    string
	Status string
	OK     bool
}

// RenderNodeTable renders the fleet as a table.
func RenderNodeTable(rows []NodeRow) string {
	if len(rows) == 0 {
		return MutedStyle().Render("No nodes found")
	}

	columns := []TableColumn{
		{Title: "ID", Width: 4},
		{Title: "NAME", Width: 12},
		{Title: "CPU", Width: 7},
		{Title: "RAM", Width: 20},
		{Title: "STATUS", Width: 10},
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		symbol := SymbolComplete
		if !r.OK {
			symbol = SymbolFail
		}
		cells[i] = []string{
			fmt.Sprintf("%d", r.ID),
			r.Name,
			r.CPU,
			r.RAM,
			symbol + " " + r.Status,
		}
	}
	return RenderSimpleTable(columns, cells)
}

// KeyValue is one labeled line of a detail listing.
type KeyValue struct {
	Key   string
	Value string
}

// RenderKeyValues renders aligned "key  value" lines.
func RenderKeyValues(pairs []KeyValue) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p.Key))
	}

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(MutedStyle().Render(padRight(p.Key, width+2)))
		b.WriteString(p.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
