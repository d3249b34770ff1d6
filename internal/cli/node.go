package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/config"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/monitor"
	"github.com/ferroscope/ferro/internal/telemetry"
	"github.com/ferroscope/ferro/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const nodeSparklineWidth = 30

// CPUHistoryOutput summarizes a node's CPU history.
type CPUHistoryOutput struct {
	Points []telemetry.CPUPoint `json:"points"`
	Min    float64              `json:"min"`
	Max    float64              `json:"max"`
}

// NodeDetailOutput is the --json form of 'ferro node <id>'.
type NodeDetailOutput struct {
	Node       NodeOutput          `json:"node"`
	CPUHistory CPUHistoryOutput    `json:"cpuHistory"`
	RAMHistory telemetry.RAMSeries `json:"ramHistory"`
	Services   []api.ServiceStatus `json:"services"`
	Info       *api.NodeInfo       `json:"info"`
}

// nodeDetail is everything fetched for one node.
type nodeDetail struct {
	snapshot telemetry.NodeSnapshot
	cpu      []api.CPUSample
	ram      []api.RAMSample
	services []api.ServiceStatus
	info     *api.NodeInfo
	at       time.Time
}

// nodeCommand prints one node's readings, history, services and system info.
func nodeCommand(cmd *cobra.Command, arg string) error {
	id, err := ParseNodeID(arg)
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	tf, err := timeFormatter(a)
	if err != nil {
		return err
	}

	var d *nodeDetail
	err = ui.WithSpinner(spinnerEnabled(), fmt.Sprintf("Loading node #%d", id), func() error {
		var err error
		d, err = fetchNodeDetail(cmd.Context(), a.client, id)
		return err
	})
	// A 401 surfaces as empty data, so it wins over whatever error followed.
	if expErr := a.checkExpired(); expErr != nil {
		return expErr
	}
	if err != nil {
		return err
	}

	out := buildNodeDetailOutput(d, tf, a.cfg.Display.HighLoad)
	if machineMode {
		return WriteJSONSuccess(cmd.OutOrStdout(), out)
	}
	t := a.cfg.Display.Thresholds
	renderNodeDetail(cmd.OutOrStdout(), out, d.at, t.Warning, t.Critical)
	return nil
}

func timeFormatter(a *app) (*telemetry.TimeFormatter, error) {
	loc, err := a.cfg.Display.Location()
	if err != nil {
		return nil, err
	}
	return telemetry.NewTimeFormatter(loc, a.cfg.Display.Clock == config.Clock24h), nil
}

// fetchNodeDetail resolves the node by id, then fetches every section
// concurrently. Any failure fails the whole fetch.
func fetchNodeDetail(ctx context.Context, client *api.Client, id int) (*nodeDetail, error) {
	nodes, err := client.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	var node *api.Node
	for i := range nodes {
		if nodes[i].ID == id {
			node = &nodes[i]
			break
		}
	}
	if node == nil {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Node %d not found", id),
			"Run 'ferro nodes' to list node ids")
	}

	d := &nodeDetail{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.snapshot = telemetry.FetchSnapshot(gctx, client, *node)
		return d.snapshot.Err
	})
	g.Go(func() (err error) {
		d.cpu, err = client.CPUHistory(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.ram, err = client.RAMHistory(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.services, err = client.ServiceStatus(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		d.info, err = client.NodeInfo(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.at = time.Now()
	return d, nil
}

func buildNodeDetailOutput(d *nodeDetail, tf *telemetry.TimeFormatter, highLoad float64) NodeDetailOutput {
	snap := d.snapshot
	node := NodeOutput{ID: snap.Node.ID, Name: snap.Node.Name}
	cpu := snap.CPU.CPU
	node.CPU = &cpu
	node.Badge = monitor.LoadBadge(cpu, highLoad)
	if usage, ok := telemetry.UsageOf(snap.RAM); ok {
		node.RAM = &RAMOutput{Used: round2(usage.Used), Total: round2(usage.Total), Percent: round2(usage.Percent)}
	}

	points := telemetry.NormalizeCPU(d.cpu, tf)
	hist := CPUHistoryOutput{Points: points}
	for i, p := range points {
		if i == 0 || p.CPU < hist.Min {
			hist.Min = p.CPU
		}
		if i == 0 || p.CPU > hist.Max {
			hist.Max = p.CPU
		}
	}

	services := d.services
	if services == nil {
		services = []api.ServiceStatus{}
	}
	return NodeDetailOutput{
		Node:       node,
		CPUHistory: hist,
		RAMHistory: telemetry.NormalizeRAM(d.ram, tf),
		Services:   services,
		Info:       d.info,
	}
}

func renderNodeDetail(w io.Writer, out NodeDetailOutput, at time.Time, warning, critical int) {
	n := out.Node
	fmt.Fprintln(w, ui.RenderHeader(ui.HeaderInfo{Title: n.Name, Subtitle: fmt.Sprintf("Node #%d", n.ID)}))

	ram := "no data"
	if n.RAM != nil {
		ram = fmt.Sprintf("%.2f / %.2f GiB (%.1f%%)", n.RAM.Used, n.RAM.Total, n.RAM.Percent)
	}
	cpuTrend := ui.MutedStyle().Render("no data")
	if pts := out.CPUHistory.Points; len(pts) > 0 {
		data := make([]float64, len(pts))
		for i, p := range pts {
			data[i] = p.CPU
		}
		cpuTrend = fmt.Sprintf("%s  %.1f%% - %.1f%% (%s to %s)",
			ui.RenderSparkline(data, nodeSparklineWidth, warning, critical),
			out.CPUHistory.Min, out.CPUHistory.Max, pts[0].Time, pts[len(pts)-1].Time)
	}
	ramTrend := ui.MutedStyle().Render("no data")
	if pts := out.RAMHistory.Points; len(pts) > 0 {
		data := make([]float64, len(pts))
		for i, p := range pts {
			data[i] = p.Used
		}
		last := pts[len(pts)-1]
		ramTrend = fmt.Sprintf("%s  %.2f GiB now, axis 0-%.0f GiB",
			ui.RenderSparkline(data, nodeSparklineWidth, 101, 101), last.Used, out.RAMHistory.Ceiling)
	}

	fmt.Fprint(w, ui.RenderKeyValues([]ui.KeyValue{
		{Key: "CPU", Value: fmt.Sprintf("%.1f%%", *n.CPU)},
		{Key: "RAM", Value: ram},
		{Key: "Load", Value: n.Badge},
		{Key: "CPU history", Value: cpuTrend},
		{Key: "RAM history", Value: ramTrend},
	}))

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.InfoStyle().Bold(true).Render("Services"))
	if len(out.Services) == 0 {
		fmt.Fprintln(w, ui.MutedStyle().Render("  No services found for this node."))
	}
	for _, s := range out.Services {
		fmt.Fprintln(w, renderServiceLine(s))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.InfoStyle().Bold(true).Render("System"))
	if out.Info == nil {
		fmt.Fprintln(w, ui.MutedStyle().Render("  System information not available"))
		return
	}
	info := out.Info
	booted := at.Add(-time.Duration(info.Uptime) * time.Second)
	fmt.Fprint(w, ui.RenderKeyValues([]ui.KeyValue{
		{Key: "OS Name", Value: info.SystemName},
		{Key: "Uptime", Value: fmt.Sprintf("%s (booted %s)", monitor.FormatUptime(info.Uptime), humanize.RelTime(booted, at, "ago", "from now"))},
		{Key: "CPU", Value: fmt.Sprintf("%s · %d Threads", info.CPUVendor, info.CPUThreads)},
		{Key: "Kernel Version", Value: info.KernelVersion},
		{Key: "OS Version", Value: info.OSVersion},
	}))
}

func renderServiceLine(s api.ServiceStatus) string {
	var symbol string
	switch {
	case !s.Reachable():
		symbol = ui.WarningStyle().Render(ui.SymbolUnreachable)
	case s.Up():
		symbol = ui.SuccessStyle().Render(ui.SymbolComplete)
	default:
		symbol = ui.ErrorStyle().Render(ui.SymbolDown)
	}
	line := fmt.Sprintf("  %s %-20s %s", symbol, s.ServiceName, monitor.ServiceBadge(s))
	if s.Reachable() && !s.Up() && s.ErrorMsg != "" {
		line += "\n      " + ui.ErrorStyle().Render(strings.TrimSpace(s.ErrorMsg))
	}
	return line
}
