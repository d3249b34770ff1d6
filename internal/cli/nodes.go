package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/monitor"
	"github.com/ferroscope/ferro/internal/telemetry"
	"github.com/ferroscope/ferro/internal/ui"
	"github.com/spf13/cobra"
)

// RAMOutput is a RAM reading in GiB.
type RAMOutput struct {
	Used    float64 `json:"used"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
}

// NodeOutput is one node of 'ferro nodes --json'.
type NodeOutput struct {
	ID    int        `json:"id"`
	Name  string     `json:"name"`
	CPU   *float64   `json:"cpu,omitempty"`
	RAM   *RAMOutput `json:"ram,omitempty"`
	Badge string     `json:"badge,omitempty"`
	Error string     `json:"error,omitempty"`
}

// NodesOutput is the --json form of 'ferro nodes'.
type NodesOutput struct {
	Nodes []NodeOutput         `json:"nodes"`
	Stats telemetry.FleetStats `json:"stats"`
}

// nodesCommand prints every node with its latest readings.
func nodesCommand(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	var fleet telemetry.Fleet
	err = ui.WithSpinner(spinnerEnabled(), "Loading nodes", func() error {
		var err error
		fleet, err = telemetry.LoadFleet(cmd.Context(), a.client)
		return err
	})
	// A 401 surfaces as empty data, so it wins over whatever error followed.
	if expErr := a.checkExpired(); expErr != nil {
		return expErr
	}
	if err != nil {
		return err
	}
	a.log.Debug("loaded %d nodes, %d failed", len(fleet.Nodes), len(fleet.Failed()))

	out := buildNodesOutput(fleet, a.cfg.Display.HighLoad)
	if machineMode {
		return WriteJSONSuccess(cmd.OutOrStdout(), out)
	}
	renderNodes(cmd.OutOrStdout(), a.cfg.API.URL, out, fleet.Stats)
	return nil
}

// buildNodesOutput keeps the node list order.
func buildNodesOutput(fleet telemetry.Fleet, highLoad float64) NodesOutput {
	out := NodesOutput{Nodes: make([]NodeOutput, 0, len(fleet.Nodes)), Stats: fleet.Stats}
	for i, node := range fleet.Nodes {
		n := NodeOutput{ID: node.ID, Name: node.Name}
		if i >= len(fleet.Snapshots) {
			out.Nodes = append(out.Nodes, n)
			continue
		}
		snap := fleet.Snapshots[i]
		if !snap.OK() {
			n.Error = errors.Summary(snap.Err)
			out.Nodes = append(out.Nodes, n)
			continue
		}
		cpu := snap.CPU.CPU
		n.CPU = &cpu
		n.Badge = monitor.LoadBadge(cpu, highLoad)
		if usage, ok := telemetry.UsageOf(snap.RAM); ok {
			n.RAM = &RAMOutput{Used: round2(usage.Used), Total: round2(usage.Total), Percent: round2(usage.Percent)}
		}
		out.Nodes = append(out.Nodes, n)
	}
	return out
}

func renderNodes(w io.Writer, apiURL string, out NodesOutput, stats telemetry.FleetStats) {
	fmt.Fprintln(w, ui.RenderHeader(ui.HeaderInfo{Title: "Ferroscope Monitor", Subtitle: apiURL}))

	rows := make([]ui.NodeRow, 0, len(out.Nodes))
	for _, n := range out.Nodes {
		row := ui.NodeRow{ID: n.ID, Name: n.Name, CPU: "-", RAM: "no data", OK: n.Error == ""}
		if n.CPU != nil {
			row.CPU = fmt.Sprintf("%.1f%%", *n.CPU)
		}
		if n.RAM != nil {
			row.RAM = fmt.Sprintf("%.2f / %.2f GiB", n.RAM.Used, n.RAM.Total)
		}
		if n.Error != "" {
			row.Status = n.Error
		} else {
			row.Status = n.Badge
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(w, ui.RenderNodeTable(rows))
	fmt.Fprintln(w)

	pairs := make([]ui.KeyValue, 0, 4)
	for _, tile := range monitor.StatTiles(stats) {
		pairs = append(pairs, ui.KeyValue{Key: tile.Label, Value: tile.Value})
	}
	fmt.Fprint(w, ui.RenderKeyValues(pairs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
