package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ferroscope/ferro/internal/telemetry"
)

var (
	statBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	statValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)
)

// StatTile is one entry of the stats row.
type StatTile struct {
	Label string
	Value string
}

// StatTiles formats fleet stats for display.
func StatTiles(s telemetry.FleetStats) []StatTile {
	return []StatTile{
		{Label: "Total Nodes", Value: fmt.Sprintf("%d", s.TotalNodes)},
		{Label: "Average CPU", Value: fmt.Sprintf("%.1f%%", s.AverageCPU)},
		{Label: "Total RAM", Value: fmt.Sprintf("%.1f/%.1f GiB", s.TotalRAM.Used, s.TotalRAM.Total)},
		{Label: "System Status", Value: "Operational"},
	}
}

// renderDashboard renders the node overview.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")
	b.WriteString(m.renderNodeCards())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	var updateText string
	switch secs := m.SecondsSinceUpdate(); {
	case m.lastUpdate.IsZero():
		updateText = "waiting for data"
	case secs <= 0:
		updateText = "last update just now"
	default:
		updateText = fmt.Sprintf("last update %ds ago", secs)
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("Ferroscope Monitor")

	parts := []string{fmt.Sprintf("%d nodes", len(m.nodes)), updateText}
	if m.sortOrder != SortDefault {
		parts = append(parts, "sorted by "+m.sortOrder.String())
	}
	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

func (m Model) renderStats() string {
	tiles := StatTiles(m.stats)
	boxes := make([]string, 0, len(tiles))
	for _, t := range tiles {
		boxes = append(boxes, statBoxStyle.Render(LabelStyle.Render(t.Label)+"\n"+statValueStyle.Render(t.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m Model) renderNodeCards() string {
	if !m.nodesLoaded {
		return m.spinner.View() + " " + LabelStyle.Render("Loading nodes...")
	}
	if len(m.display) == 0 {
		return LabelStyle.Render("No nodes found")
	}

	width := m.calculateCardWidth()
	cards := make([]string, 0, len(m.display))
	for i, node := range m.display {
		cards = append(cards, m.renderCard(node, width, i == m.selected))
	}
	return m.layoutCards(cards, width)
}

// calculateCardWidth fits several fixed-width cards per row, or one card
// spanning a narrow terminal.
func (m Model) calculateCardWidth() int {
	if m.width == 0 || m.width >= cardWidth+4 {
		return cardWidth
	}
	return max(m.width-4, 20)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, width int) string {
	if len(cards) == 0 {
		return ""
	}

	cardsPerRow := 1
	if m.width > 0 {
		// margin + border
		cardsPerRow = max(m.width/(width+3), 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := min(i+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderFooter() string {
	if t := m.renderToast(); t != "" {
		return t
	}
	hints := []string{
		"q quit",
		"r refresh",
		"s sort",
		"↑↓ select",
		"enter details",
		"? help",
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
