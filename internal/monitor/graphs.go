package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '⠀'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] to the bit offset in a braille pattern.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// ColorFunc picks a color for a plotted value.
type ColorFunc func(v float64) lipgloss.Color

// SolidColor colors every value the same.
func SolidColor(c lipgloss.Color) ColorFunc {
	return func(float64) lipgloss.Color { return c }
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// RenderBrailleChart plots data on a fixed 0..maxVal axis. Each character
// holds 2 points horizontally and 4 levels vertically. Data shorter than the
// chart is right-aligned so the newest point sits at the right edge; longer
// data is downsampled keeping peaks. Values outside the axis are clamped.
func RenderBrailleChart(data []float64, width, height int, maxVal float64, color ColorFunc) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	if color == nil {
		color = SolidColor(ColorGraph)
	}

	totalDots := height * 4
	targetPoints := width * 2

	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	colMaxValues := make([]float64, width)

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		normalized := normalizeValue(val, 0, maxVal)
		dotHeight := clampInt(int(normalized*float64(totalDots)), totalDots)
		// Keep non-zero readings visible.
		if dotHeight == 0 && val > 0 {
			dotHeight = 1
		}

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		if val > colMaxValues[charCol] {
			colMaxValues[charCol] = val
		}

		subCol := (i + horizOffset) % 2
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			if row < 0 {
				continue
			}
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	lines := make([]string, 0, height)
	for _, row := range grid {
		var b strings.Builder
		for colIdx, char := range row {
			style := lipgloss.NewStyle().Foreground(color(colMaxValues[colIdx]))
			b.WriteString(style.Render(string(char)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// RenderAxisChart wraps RenderBrailleChart with a y-axis gutter showing the
// top, middle and zero values, and an x-axis line with the first and last
// labels underneath.
func RenderAxisChart(data []float64, width, height int, maxVal float64, unit string, color ColorFunc, firstLabel, lastLabel string) string {
	top := formatAxisValue(maxVal, unit)
	mid := formatAxisValue(maxVal/2, unit)
	zero := formatAxisValue(0, unit)
	gutter := max(lipgloss.Width(top), lipgloss.Width(mid), lipgloss.Width(zero))

	plotWidth := width - gutter - 2
	if plotWidth < 4 {
		plotWidth = 4
	}

	chart := RenderBrailleChart(data, plotWidth, height, maxVal, color)
	rows := strings.Split(chart, "\n")

	axisStyle := MutedStyle
	var out []string
	for i, row := range rows {
		label := ""
		switch {
		case i == 0:
			label = top
		case i == len(rows)-1:
			label = zero
		case height > 2 && i == height/2:
			label = mid
		}
		out = append(out, axisStyle.Render(fmt.Sprintf("%*s ┤", gutter, label))+row)
	}

	if firstLabel != "" || lastLabel != "" {
		spacing := plotWidth - lipgloss.Width(firstLabel) - lipgloss.Width(lastLabel)
		if spacing < 1 {
			spacing = 1
		}
		xAxis := strings.Repeat(" ", gutter+2) + firstLabel + strings.Repeat(" ", spacing) + lastLabel
		out = append(out, axisStyle.Render(xAxis))
	}
	return strings.Join(out, "\n")
}

func formatAxisValue(v float64, unit string) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d%s", int64(v), unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}

// RenderCleanSparkline renders a single-row 0-100 sparkline in one color.
func RenderCleanSparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	for _, val := range resampled {
		normalized := normalizeValue(val, 0, 100)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(result.String())
}

// resampleData resamples data to the target size.
// Downsampling keeps the max of each bucket to preserve spikes.
// Upsampling interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
