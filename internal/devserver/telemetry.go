package devserver

import (
	"fmt"
	"math"
	"time"

	"github.com/ferroscope/ferro/internal/api"
)

// cpuReading is the backend's wire shape for CPU samples.
type cpuReading struct {
	Value    float64 `json:"value"`
	DateTime string  `json:"date_time"`
}

var serviceNames = []string{"nginx", "postgres", "node_exporter"}

var memorySizesGiB = []uint64{8, 16, 32, 64}

// generator derives readings from (node, sample slot) alone.
type generator struct {
	nodes      []api.Node
	byID       map[int]api.Node
	historyLen int
	step       time.Duration
	started    time.Time
}

func newGenerator(nodes []api.Node, historyLen int, step time.Duration, started time.Time) *generator {
	byID := make(map[int]api.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return &generator{
		nodes:      nodes,
		byID:       byID,
		historyLen: historyLen,
		step:       step,
		started:    started,
	}
}

func (g *generator) known(id int) bool {
	_, ok := g.byID[id]
	return ok
}

func (g *generator) slot(now time.Time) time.Time {
	return now.Truncate(g.step)
}

func (g *generator) phase(t time.Time) float64 {
	return float64(t.UnixNano() / int64(g.step))
}

func (g *generator) cpuAt(id int, t time.Time) float64 {
	k := g.phase(t)
	seed := float64(id)
	v := 20 + float64(absInt(id)%5)*12 + 18*math.Sin(k/6+seed) + 7*math.Sin(k/2.3+seed*1.7)
	v = math.Max(0, math.Min(100, v))
	return math.Round(v*100) / 100
}

// totalBytes cycles 8, 16, 32, 64 GiB starting at node 1.
func (g *generator) totalBytes(id int) uint64 {
	return memorySizesGiB[(absInt(id)+len(memorySizesGiB)-1)%len(memorySizesGiB)] << 30
}

func (g *generator) freeBytesAt(id int, t time.Time) uint64 {
	frac := 0.45 + 0.2*math.Sin(g.phase(t)/8+float64(id))
	return uint64(float64(g.totalBytes(id)) * frac)
}

func (g *generator) latestCPU(id int, now time.Time) cpuReading {
	t := g.slot(now)
	return cpuReading{Value: g.cpuAt(id, t), DateTime: isoTime(t)}
}

func (g *generator) latestRAM(id int, now time.Time) api.RAMSample {
	return g.ramAt(id, g.slot(now))
}

func (g *generator) ramAt(id int, t time.Time) api.RAMSample {
	return api.RAMSample{
		Free:      formatGiB(g.freeBytesAt(id, t)),
		Total:     formatGiB(g.totalBytes(id)),
		Timestamp: isoTime(t),
	}
}

// cpuHistory is newest-first, like the real backend.
func (g *generator) cpuHistory(id int, now time.Time) []cpuReading {
	out := make([]cpuReading, g.historyLen)
	t := g.slot(now)
	for i := range out {
		at := t.Add(-time.Duration(i) * g.step)
		out[i] = cpuReading{Value: g.cpuAt(id, at), DateTime: isoTime(at)}
	}
	return out
}

// ramHistory is newest-first, like the real backend.
func (g *generator) ramHistory(id int, now time.Time) []api.RAMSample {
	out := make([]api.RAMSample, g.historyLen)
	t := g.slot(now)
	for i := range out {
		out[i] = g.ramAt(id, t.Add(-time.Duration(i)*g.step))
	}
	return out
}

// services: every fourth node is unreachable, every third has a service down.
func (g *generator) services(id int) []api.ServiceStatus {
	out := make([]api.ServiceStatus, 0, len(serviceNames))
	for i, name := range serviceNames {
		s := api.ServiceStatus{ServiceName: name, Status: api.StatusUp, ServiceStatus: "ok"}
		switch {
		case id%4 == 0:
			s.Status = api.StatusDown
			s.ServiceStatus = api.Unreachable
			s.ErrorMsg = "no route to host"
		case id%3 == 0 && i == len(serviceNames)-1:
			s.Status = api.StatusDown
			s.ErrorMsg = "connection refused"
		}
		out = append(out, s)
	}
	return out
}

func (g *generator) nodeServices() []api.Service {
	out := make([]api.Service, len(serviceNames))
	for i, name := range serviceNames {
		out[i] = api.Service{ServiceName: name}
	}
	return out
}

func (g *generator) nodeInfo(id int, now time.Time) api.NodeInfo {
	boot := g.started.Add(-(time.Duration(absInt(id))*26*time.Hour + 17*time.Minute))
	vendor := "GenuineIntel"
	if id%2 == 1 {
		vendor = "AuthenticAMD"
	}
	return api.NodeInfo{
		SystemName:    "Debian GNU/Linux",
		KernelVersion: "6.1.0-18-amd64",
		OSVersion:     "12 (bookworm)",
		Uptime:        int64(now.Sub(boot).Seconds()),
		CPUThreads:    4 * (absInt(id)%4 + 1),
		CPUVendor:     vendor,
	}
}

// formatGiB matches the agent's "%.2f GiB" strings.
func formatGiB(bytes uint64) string {
	return fmt.Sprintf("%.2f GiB", float64(bytes)/(1<<30))
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
