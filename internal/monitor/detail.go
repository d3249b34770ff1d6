package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/poller"
	"github.com/ferroscope/ferro/internal/telemetry"
)

const detailChartHeight = 4

// detailState is what the detail view has loaded for one node.
type detailState struct {
	node api.Node

	cpu       []telemetry.CPUPoint
	cpuLoaded bool

	ram       telemetry.RAMSeries
	ramLoaded bool

	services       []api.ServiceStatus
	servicesLoaded bool

	info       *api.NodeInfo
	infoLoaded bool
	infoAt     time.Time
}

func newDetailState(node api.Node) *detailState {
	return &detailState{node: node}
}

// Failed fetches keep the last good data; only the first response flips the
// section out of its loading state.

func (m *Model) applyCPUHistory(r poller.Result[[]telemetry.CPUPoint]) tea.Cmd {
	defer m.updateDetailViewportContent()
	m.detail.cpuLoaded = true
	if r.Err != nil {
		return m.reportError("cpu-history", "Error fetching CPU history", r.Err)
	}
	m.clearError("cpu-history")
	m.detail.cpu = r.Value
	return nil
}

func (m *Model) applyRAMHistory(r poller.Result[telemetry.RAMSeries]) tea.Cmd {
	defer m.updateDetailViewportContent()
	m.detail.ramLoaded = true
	if r.Err != nil {
		return m.reportError("ram-history", "Error fetching RAM history", r.Err)
	}
	m.clearError("ram-history")
	m.detail.ram = r.Value
	return nil
}

func (m *Model) applyServices(r poller.Result[[]api.ServiceStatus]) tea.Cmd {
	defer m.updateDetailViewportContent()
	m.detail.servicesLoaded = true
	if r.Err != nil {
		return m.reportError("services", "Error fetching services", r.Err)
	}
	m.clearError("services")
	m.detail.services = r.Value
	return nil
}

func (m *Model) applyNodeInfo(r poller.Result[*api.NodeInfo]) tea.Cmd {
	defer m.updateDetailViewportContent()
	m.detail.infoLoaded = true
	if r.Err != nil {
		return m.reportError("node-info", "Error fetching node info", r.Err)
	}
	m.clearError("node-info")
	m.detail.info = r.Value
	m.detail.infoAt = r.At
	return nil
}

func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady || m.detail == nil {
		return
	}
	m.viewport.SetContent(m.renderDetailContent(m.detailWidth()))
}

func (m Model) detailWidth() int {
	return max(m.width-4, 40)
}

// renderDetailView renders the node detail screen.
func (m Model) renderDetailView() string {
	if m.detail == nil {
		return LabelStyle.Render("No node selected")
	}

	var body string
	if m.viewportReady {
		body = m.viewport.View()
	} else {
		body = m.renderDetailContent(m.detailWidth())
	}
	return m.renderDetailHeader() + "\n\n" + body + "\n" + m.renderDetailFooter()
}

func (m Model) renderDetailHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(m.detail.node.Name)

	sub := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | Node #%d | refresh every %s", m.detail.node.ID, m.cfg.Poll.History))

	return HeaderStyle.Render(title + sub)
}

func (m Model) renderDetailFooter() string {
	if t := m.renderToast(); t != "" {
		return t
	}
	return FooterStyle.Render("esc back | r refresh | ↑↓ scroll | ? help")
}

// renderDetailContent renders every section, one under another.
func (m Model) renderDetailContent(width int) string {
	d := m.detail
	if !d.cpuLoaded && !d.ramLoaded && !d.servicesLoaded && !d.infoLoaded {
		return m.spinner.View() + " " + LabelStyle.Render("Loading node...")
	}

	sections := []string{
		m.renderCPUSection(width),
		m.renderRAMSection(width),
		m.renderServicesSection(width),
		m.renderSystemSection(width),
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) loadingLine(what string) string {
	return m.spinner.View() + " " + LabelStyle.Render("Loading "+what+"...")
}

func (m Model) renderCPUSection(width int) string {
	d := m.detail
	value := ""
	var lines []string

	switch {
	case !d.cpuLoaded:
		lines = append(lines, m.loadingLine("CPU history"))
	case len(d.cpu) == 0:
		lines = append(lines, MutedStyle.Render("No CPU data available"))
	default:
		last := d.cpu[len(d.cpu)-1]
		value = fmt.Sprintf("%.1f%%", last.CPU)

		data := make([]float64, len(d.cpu))
		for i, p := range d.cpu {
			data[i] = p.CPU
		}
		t := m.cfg.Display.Thresholds
		color := func(v float64) lipgloss.Color { return MetricColorWithThresholds(v, t.Warning, t.Critical) }
		lines = append(lines, RenderAxisChart(data, width-4, detailChartHeight, 100, "%", color, d.cpu[0].Time, last.Time))
	}

	return Section("CPU Usage History", value, lines, width)
}

func (m Model) renderRAMSection(width int) string {
	d := m.detail
	value := ""
	var lines []string

	switch {
	case !d.ramLoaded:
		lines = append(lines, m.loadingLine("RAM history"))
	case len(d.ram.Points) == 0:
		lines = append(lines, MutedStyle.Render("No RAM data available"))
	default:
		points := d.ram.Points
		last := points[len(points)-1]
		value = fmt.Sprintf("%.2f / %.2f GiB", last.Used, last.Total)

		data := make([]float64, len(points))
		for i, p := range points {
			data[i] = p.Used
		}
		lines = append(lines, RenderAxisChart(data, width-4, detailChartHeight, d.ram.Ceiling, "G", SolidColor(ColorGraph), points[0].Time, last.Time))
	}

	return Section("RAM Usage History", value, lines, width)
}

func (m Model) renderServicesSection(width int) string {
	d := m.detail
	value := ""
	var lines []string

	switch {
	case !d.servicesLoaded:
		lines = append(lines, m.loadingLine("services"))
	case len(d.services) == 0:
		lines = append(lines, MutedStyle.Render("No services found for this node."))
	default:
		up := 0
		for _, s := range d.services {
			if s.Up() {
				up++
			}
			lines = append(lines, renderServiceLine(s, width-4)...)
		}
		value = fmt.Sprintf("%d/%d up", up, len(d.services))
	}

	return Section("Services Status", value, lines, width)
}

// ServiceBadge returns the label shown for a service's state.
func ServiceBadge(s api.ServiceStatus) string {
	if !s.Reachable() {
		return api.Unreachable
	}
	return s.Status
}

func renderServiceLine(s api.ServiceStatus, width int) []string {
	var glyph, badge string
	switch {
	case !s.Reachable():
		glyph = lipgloss.NewStyle().Foreground(ColorWarning).Render(GlyphUnreachable)
		badge = BadgeWarningStyle.Render(ServiceBadge(s))
	case s.Up():
		glyph = lipgloss.NewStyle().Foreground(ColorHealthy).Render(GlyphUp)
		badge = BadgeNormalStyle.Render(ServiceBadge(s))
	default:
		glyph = lipgloss.NewStyle().Foreground(ColorCritical).Render(GlyphDown)
		badge = BadgeHighLoadStyle.Render(ServiceBadge(s))
	}

	name := ValueStyle.Render(s.ServiceName)
	gap := max(width-lipgloss.Width(glyph)-1-lipgloss.Width(name)-lipgloss.Width(badge), 1)
	lines := []string{glyph + " " + name + strings.Repeat(" ", gap) + badge}

	// Only a reachable node's own report of a down service carries a useful message.
	if s.Reachable() && !s.Up() && s.ErrorMsg != "" {
		lines = append(lines, "  "+ErrorTextStyle.Render(truncateWithEllipsis(s.ErrorMsg, width-2)))
	}
	return lines
}

// FormatUptime renders seconds as "Xh Ym".
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

func (m Model) renderSystemSection(width int) string {
	d := m.detail
	var lines []string

	switch {
	case !d.infoLoaded:
		lines = append(lines, m.loadingLine("system information"))
	case d.info == nil:
		lines = append(lines, MutedStyle.Render("System information not available"))
	default:
		info := d.info
		at := d.infoAt
		if at.IsZero() {
			at = m.now()
		}
		booted := at.Add(-time.Duration(info.Uptime) * time.Second)

		row := func(label, value string) string {
			return LabelStyle.Render(fmt.Sprintf("%-16s", label)) + ValueStyle.Render(value)
		}
		lines = append(lines,
			row("OS Name", info.SystemName),
			row("Uptime", fmt.Sprintf("%s (booted %s)", FormatUptime(info.Uptime), humanize.RelTime(booted, m.now(), "ago", "from now"))),
			row("CPU", fmt.Sprintf("%s · %d Threads", info.CPUVendor, info.CPUThreads)),
			row("Kernel Version", info.KernelVersion),
			row("OS Version", info.OSVersion),
		)
	}

	return Section("System Information", "", lines, width)
}
