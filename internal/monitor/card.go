package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/telemetry"
)

// Card badges
const (
	BadgeHighLoad = "High Load"
	BadgeNormal   = "Normal"
)

var cardDividerStyle = lipgloss.NewStyle().
	Foreground(ColorBorder).
	Background(ColorSurfaceBg)

func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// renderCardLine pads content to width with the card background.
func renderCardLine(content string, width int) string {
	contentWidth := lipgloss.Width(content)
	padding := ""
	if width > contentWidth {
		padding = strings.Repeat(" ", width-contentWidth)
	}
	return lipgloss.NewStyle().Background(ColorSurfaceBg).Render(content + padding)
}

// truncateWithEllipsis truncates a string to maxLen runes, adding ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// LoadBadge returns the card badge for a CPU reading. Only readings strictly
// above highLoad count as high load.
func LoadBadge(cpu, highLoad float64) string {
	if cpu > highLoad {
		return BadgeHighLoad
	}
	return BadgeNormal
}

// renderCard renders one node card.
func (m Model) renderCard(node api.Node, width int, selected bool) string {
	style := CardStyle.Width(width)
	if selected {
		style = CardSelectedStyle.Width(width)
	}
	innerWidth := width - 4

	snap, loaded := m.snapshots[node.ID]

	var lines []string
	lines = append(lines, renderCardLine(m.renderCardTitle(node, snap, loaded, innerWidth), innerWidth))
	lines = append(lines, renderCardLine(MutedStyle.Render(fmt.Sprintf("Node #%d", node.ID)), innerWidth))
	lines = append(lines, renderCardDivider(innerWidth))

	switch {
	case !loaded:
		lines = append(lines, renderCardLine(m.spinner.View()+" "+LabelStyle.Render("Loading..."), innerWidth))
	case !snap.OK():
		msg := truncateWithEllipsis(errors.Summary(snap.Err), innerWidth-2)
		lines = append(lines, renderCardLine(ErrorTextStyle.Render(GlyphError+" "+msg), innerWidth))
	default:
		lines = append(lines, m.renderCardCPU(snap.CPU, innerWidth)...)
		lines = append(lines, m.renderCardRAM(snap.RAM, innerWidth)...)
		if spark := m.history.CPU(node.ID, innerWidth); len(spark) > 1 {
			lines = append(lines, renderCardLine(RenderCleanSparkline(spark, innerWidth, ColorGraph), innerWidth))
		}
	}

	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) renderCardTitle(node api.Node, snap telemetry.NodeSnapshot, loaded bool, width int) string {
	badge := ""
	if loaded && snap.OK() {
		if LoadBadge(snap.CPU.CPU, m.cfg.Display.HighLoad) == BadgeHighLoad {
			badge = BadgeHighLoadStyle.Render(BadgeHighLoad)
		} else {
			badge = BadgeNormalStyle.Render(BadgeNormal)
		}
	}

	nameWidth := width - lipgloss.Width(badge) - 1
	name := NodeNameStyle.Render(truncateWithEllipsis(node.Name, nameWidth))
	gap := width - lipgloss.Width(name) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	return name + strings.Repeat(" ", gap) + badge
}

func (m Model) renderCardCPU(cpu api.CPUSample, width int) []string {
	t := m.cfg.Display.Thresholds
	pct := MetricStyleWithThresholds(cpu.CPU, t.Warning, t.Critical).Render(fmt.Sprintf("%5.1f%%", cpu.CPU))
	barWidth := width - 5 - 7
	bar := CompactProgressBarWithThresholds(barWidth, cpu.CPU, t.Warning, t.Critical)
	return []string{renderCardLine(LabelStyle.Render("CPU  ")+bar+" "+pct, width)}
}

func (m Model) renderCardRAM(ram *api.RAMSample, width int) []string {
	usage, ok := telemetry.UsageOf(ram)
	if !ok {
		return []string{renderCardLine(LabelStyle.Render("RAM  ")+MutedStyle.Render("no data"), width)}
	}

	t := m.cfg.Display.Thresholds
	pct := MetricStyleWithThresholds(usage.Percent, t.Warning, t.Critical).Render(fmt.Sprintf("%5.1f%%", usage.Percent))
	barWidth := width - 5 - 7
	bar := CompactProgressBarWithThresholds(barWidth, usage.Percent, t.Warning, t.Critical)
	detail := fmt.Sprintf("     %.2f / %.2f GiB", usage.Used, usage.Total)
	return []string{
		renderCardLine(LabelStyle.Render("RAM  ")+bar+" "+pct, width),
		renderCardLine(MutedStyle.Render(detail), width),
	}
}
