package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Title    string
	Version  string
	Subtitle string
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders a title line, an optional subtitle and a divider.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ColorNeonPink).
		Bold(true)

	var output strings.Builder
	output.WriteString(titleStyle.Render(info.Title))
	if info.Version != "" {
		output.WriteString(" ")
		output.WriteString(lipgloss.NewStyle().Foreground(ColorNeonCyan).Render(info.Version))
	}
	output.WriteString("\n")

	if info.Subtitle != "" {
		output.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Subtitle))
		output.WriteString("\n")
	}

	output.WriteString(lipgloss.NewStyle().Foreground(ColorGlassBorder).Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")
	return output.String()
}
