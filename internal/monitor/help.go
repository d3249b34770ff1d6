package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

var dashboardBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Refresh now"},
	{Key: "s", Desc: "Cycle sort order"},
	{Key: "up / k", Desc: "Select previous node"},
	{Key: "down / j", Desc: "Select next node"},
	{Key: "Home", Desc: "Select first node"},
	{Key: "End", Desc: "Select last node"},
	{Key: "Enter", Desc: "Open node details"},
	{Key: "L", Desc: "Log out"},
	{Key: "?", Desc: "Toggle this help"},
}

var detailBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "r", Desc: "Refresh now"},
	{Key: "up / down", Desc: "Scroll"},
	{Key: "PgUp / PgDn", Desc: "Scroll a page"},
	{Key: "Esc", Desc: "Back to dashboard"},
	{Key: "L", Desc: "Log out"},
	{Key: "?", Desc: "Toggle this help"},
}

var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

// renderHelpOverlay renders a centered box listing the current screen's shortcuts.
func (m Model) renderHelpOverlay() string {
	bindings := dashboardBindings
	if m.screen == ScreenDetail {
		bindings = detailBindings
	}

	lines := []string{helpTitleStyle.Render("Keyboard Shortcuts"), ""}
	for _, b := range bindings {
		lines = append(lines, helpKeyStyle.Render(b.Key)+helpDescStyle.Render(b.Desc))
	}
	lines = append(lines, "", LabelStyle.Render("Press ? to close"))

	helpBox := helpBoxStyle.Render(strings.Join(lines, "\n"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
