package telemetry

import (
	"context"

	"github.com/ferroscope/ferro/internal/api"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrentNodes bounds how many nodes are fetched at once.
const MaxConcurrentNodes = 16

// SnapshotSource fetches a node's latest readings.
type SnapshotSource interface {
	LatestCPU(ctx context.Context, nodeID int) (api.CPUSample, error)
	LatestRAM(ctx context.Context, nodeID int) (*api.RAMSample, error)
}

// FleetSource can also list nodes.
type FleetSource interface {
	SnapshotSource
	ListNodes(ctx context.Context) ([]api.Node, error)
}

// NodeSnapshot is one node's latest CPU and RAM readings. Err is set when
// the pair could not be fetched, in which case CPU and RAM are zero.
type NodeSnapshot struct {
	Node api.Node
	CPU  api.CPUSample
	RAM  *api.RAMSample
	Err  error
}

// OK reports whether the snapshot was fetched.
func (s NodeSnapshot) OK() bool { return s.Err == nil }

// FetchSnapshot fetches CPU and RAM together. If either call fails the
// other is cancelled and no partial result is returned.
func FetchSnapshot(ctx context.Context, src SnapshotSource, node api.Node) NodeSnapshot {
	g, gctx := errgroup.WithContext(ctx)

	var cpu api.CPUSample
	var ram *api.RAMSample
	g.Go(func() error {
		var err error
		cpu, err = src.LatestCPU(gctx, node.ID)
		return err
	})
	g.Go(func() error {
		var err error
		ram, err = src.LatestRAM(gctx, node.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		return NodeSnapshot{Node: node, Err: err}
	}
	return NodeSnapshot{Node: node, CPU: cpu, RAM: ram}
}

// CollectFleet fetches a snapshot for every node. Nodes are independent: a
// failure is recorded on that node's snapshot and the rest proceed. The
// result is in the same order as nodes.
func CollectFleet(ctx context.Context, src SnapshotSource, nodes []api.Node) []NodeSnapshot {
	snaps := make([]NodeSnapshot, len(nodes))

	var g errgroup.Group
	g.SetLimit(MaxConcurrentNodes)
	for i, node := range nodes {
		g.Go(func() error {
			snaps[i] = FetchSnapshot(ctx, src, node)
			return nil
		})
	}
	_ = g.Wait()

	return snaps
}

// Fleet is the node list with each node's snapshot and the derived stats.
type Fleet struct {
	Nodes     []api.Node
	Snapshots []NodeSnapshot
	Stats     FleetStats
}

// Failed returns the snapshots that could not be fetched.
func (f Fleet) Failed() []NodeSnapshot {
	var out []NodeSnapshot
	for _, s := range f.Snapshots {
		if !s.OK() {
			out = append(out, s)
		}
	}
	return out
}

// LoadFleet lists nodes, collects their snapshots and aggregates them. Only
// a failure to list nodes is returned as an error.
func LoadFleet(ctx context.Context, src FleetSource) (Fleet, error) {
	nodes, err := src.ListNodes(ctx)
	if err != nil {
		return Fleet{}, err
	}
	snaps := CollectFleet(ctx, src, nodes)
	return Fleet{
		Nodes:     nodes,
		Snapshots: snaps,
		Stats:     Aggregate(nodes, snaps),
	}, nil
}
