package monitor

import (
	"sync"

	"github.com/ferroscope/ferro/internal/telemetry"
)

// DefaultHistorySize is the default number of snapshots retained per node.
const DefaultHistorySize = 60

// History keeps the recent snapshot readings of each node in ring buffers.
// It backs the card sparklines; the detail charts use server history instead.
type History struct {
	mu    sync.RWMutex
	size  int
	nodes map[int]*nodeHistory
}

type nodeHistory struct {
	cpu *ringBuffer
	ram *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the given buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:  size,
		nodes: make(map[int]*nodeHistory),
	}
}

// Push records a successful snapshot. Failed snapshots are ignored, and RAM
// is only recorded when the node reported it.
func (h *History) Push(snap telemetry.NodeSnapshot) {
	if !snap.OK() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.getOrCreate(snap.Node.ID)
	hist.cpu.push(snap.CPU.CPU)
	if usage, ok := telemetry.UsageOf(snap.RAM); ok {
		hist.ram.push(usage.Percent)
	}
}

// CPU returns up to count CPU readings for a node, oldest first.
func (h *History) CPU(nodeID, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.nodes[nodeID]
	if !ok {
		return nil
	}
	return hist.cpu.getLast(count)
}

// RAM returns up to count RAM usage percentages for a node, oldest first.
func (h *History) RAM(nodeID, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.nodes[nodeID]
	if !ok {
		return nil
	}
	return hist.ram.getLast(count)
}

// Retain drops history for every node not in ids.
func (h *History) Retain(ids []int) {
	keep := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.nodes {
		if _, ok := keep[id]; !ok {
			delete(h.nodes, id)
		}
	}
}

// Count returns the number of CPU readings stored for a node.
func (h *History) Count(nodeID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.nodes[nodeID]
	if !ok {
		return 0
	}
	return hist.cpu.count
}

// Must be called with h.mu held.
func (h *History) getOrCreate(nodeID int) *nodeHistory {
	hist, ok := h.nodes[nodeID]
	if !ok {
		hist = &nodeHistory{
			cpu: newRingBuffer(h.size),
			ram: newRingBuffer(h.size),
		}
		h.nodes[nodeID] = hist
	}
	return hist
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value is at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
