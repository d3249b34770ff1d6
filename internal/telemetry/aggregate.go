package telemetry

import "github.com/ferroscope/ferro/internal/api"

// RAMTotals is used and total memory in GiB.
type RAMTotals struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// FleetStats summarizes the latest readings across the fleet.
type FleetStats struct {
	TotalNodes int       `json:"totalNodes"`
	AverageCPU float64   `json:"averageCPU"`
	TotalRAM   RAMTotals `json:"totalRAM"`
}

// RAMUsage is one reading's memory in GiB.
type RAMUsage struct {
	Used    float64
	Total   float64
	Percent float64
}

// UsageOf parses a RAM reading. It reports false for a nil sample or when
// either field is unparseable.
func UsageOf(s *api.RAMSample) (RAMUsage, bool) {
	if s == nil {
		return RAMUsage{}, false
	}
	total, err := ParseSize(s.Total)
	if err != nil {
		return RAMUsage{}, false
	}
	free, err := ParseSize(s.Free)
	if err != nil {
		return RAMUsage{}, false
	}
	u := RAMUsage{Used: total - free, Total: total}
	if total > 0 {
		u.Percent = u.Used / total * 100
	}
	return u, true
}

// Aggregate computes fleet stats from the node list and snapshots.
//
// TotalNodes always counts every listed node. AverageCPU is the mean over
// snapshots that were fetched, and 0 when there are none. RAM totals skip
// nodes with no or unparseable RAM data.
func Aggregate(nodes []api.Node, snaps []NodeSnapshot) FleetStats {
	stats := FleetStats{TotalNodes: len(nodes)}

	var cpuSum float64
	var cpuCount int
	for _, s := range snaps {
		if !s.OK() {
			continue
		}
		cpuSum += s.CPU.CPU
		cpuCount++

		if u, ok := UsageOf(s.RAM); ok {
			stats.TotalRAM.Used += u.Used
			stats.TotalRAM.Total += u.Total
		}
	}
	if cpuCount > 0 {
		stats.AverageCPU = cpuSum / float64(cpuCount)
	}
	return stats
}
