package telemetry

import (
	"math"

	"github.com/ferroscope/ferro/internal/api"
)

// MinRAMCeiling is the smallest RAM chart axis ceiling, in GiB.
const MinRAMCeiling = 16.0

// CPUPoint is one chart-ready CPU reading.
type CPUPoint struct {
	Timestamp string  `json:"timestamp"`
	Time      string  `json:"time"`
	CPU       float64 `json:"cpu"`
}

// RAMPoint is one chart-ready RAM reading in GiB.
type RAMPoint struct {
	Timestamp string  `json:"timestamp"`
	Time      string  `json:"time"`
	Used      float64 `json:"used"`
	Total     float64 `json:"total"`
}

// RAMSeries is a RAM chart: points oldest first and the y-axis ceiling.
type RAMSeries struct {
	Points  []RAMPoint `json:"points"`
	Ceiling float64    `json:"ceiling"`
}

// NormalizeCPU converts a newest-first history into oldest-first points.
// history is not modified.
func NormalizeCPU(history []api.CPUSample, tf *TimeFormatter) []CPUPoint {
	points := make([]CPUPoint, len(history))
	for i, s := range history {
		points[len(history)-1-i] = CPUPoint{
			Timestamp: s.Timestamp,
			Time:      tf.Label(s.Timestamp),
			CPU:       s.CPU,
		}
	}
	return points
}

// NormalizeRAM converts a newest-first history into oldest-first points with
// used = total - free, and computes the axis ceiling. Unparseable sizes
// count as 0. history is not modified.
func NormalizeRAM(history []api.RAMSample, tf *TimeFormatter) RAMSeries {
	points := make([]RAMPoint, len(history))
	maxTotal := 0.0
	for i, s := range history {
		total := sizeOrZero(s.Total)
		points[len(history)-1-i] = RAMPoint{
			Timestamp: s.Timestamp,
			Time:      tf.Label(s.Timestamp),
			Used:      total - sizeOrZero(s.Free),
			Total:     total,
		}
		maxTotal = math.Max(maxTotal, total)
	}
	return RAMSeries{Points: points, Ceiling: AxisCeiling(maxTotal)}
}

// AxisCeiling rounds maxTotal up to a multiple of its power of ten, with a
// floor of MinRAMCeiling. 23 becomes 30 and 340 becomes 400.
func AxisCeiling(maxTotal float64) float64 {
	if math.IsNaN(maxTotal) || math.IsInf(maxTotal, 0) || maxTotal <= MinRAMCeiling {
		return MinRAMCeiling
	}
	magnitude := math.Pow(10, math.Floor(math.Log10(maxTotal)))
	return math.Ceil(maxTotal/magnitude) * magnitude
}
