package monitor

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/poller"
	"github.com/ferroscope/ferro/internal/telemetry"
)

// eventBuffer is the capacity of the channel pollers deliver results on.
const eventBuffer = 64

// runtime owns the background pollers. It is shared by every copy of the
// Model and only touched from Update, so it needs no lock of its own.
type runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg

	src          Source
	log          logger.Logger
	discardStale bool

	// gen numbers scopes; a closed scope's gen field is reset to 0 so its
	// queued results no longer match.
	gen uint64

	nodes    *poller.Scope
	nodesGen uint64

	cards    *poller.Scope
	cardsGen uint64
	cardIDs  []int

	detail    *poller.Scope
	detailGen uint64
}

// eventMsg wraps a poller result read off the events channel.
type eventMsg struct{ msg tea.Msg }

func newRuntime(src Source, log logger.Logger, discardStale bool) *runtime {
	ctx, cancel := context.WithCancel(context.Background())
	return &runtime{
		ctx:          ctx,
		cancel:       cancel,
		events:       make(chan tea.Msg, eventBuffer),
		src:          src,
		log:          log,
		discardStale: discardStale,
	}
}

// waitForEvent blocks for the next poller result. Update re-arms it after
// every eventMsg so exactly one is outstanding.
func (rt *runtime) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-rt.events:
			return eventMsg{msg: msg}
		case <-rt.ctx.Done():
			return nil
		}
	}
}

// notifyExpired delivers SessionExpiredMsg on the events channel without
// blocking the caller. Update may be waiting in Scope.Close for the very
// fetch that reported the 401.
func (rt *runtime) notifyExpired() {
	go func() {
		select {
		case rt.events <- SessionExpiredMsg{}:
		case <-rt.ctx.Done():
		}
	}()
}

func (rt *runtime) newScope() (*poller.Scope, uint64) {
	rt.gen++
	return poller.NewScope(rt.ctx), rt.gen
}

// startPoller runs fetch on interval inside scope, delivering each result
// wrapped by wrap onto the events channel.
func startPoller[T any](rt *runtime, scope *poller.Scope, name string, interval time.Duration,
	fetch func(ctx context.Context) (T, error), wrap func(poller.Result[T]) tea.Msg) {
	poller.Start(scope, &poller.Poller[T]{
		Name:         name,
		Interval:     interval,
		Fetch:        fetch,
		DiscardStale: rt.discardStale,
		Logger:       rt.log,
		Emit: func(ctx context.Context, r poller.Result[T]) {
			select {
			case rt.events <- wrap(r):
			case <-ctx.Done():
			}
		},
	})
}

// startNodes begins polling the node list.
func (rt *runtime) startNodes(interval time.Duration) {
	rt.closeNodes()
	scope, gen := rt.newScope()
	rt.nodes, rt.nodesGen = scope, gen

	startPoller(rt, scope, "nodes", interval,
		rt.src.ListNodes,
		func(r poller.Result[[]api.Node]) tea.Msg { return nodesMsg{gen: gen, result: r} })
}

// startCards polls each node's latest snapshot. It is a no-op when the node
// set is unchanged and the cards are already running.
func (rt *runtime) startCards(nodes []api.Node, interval time.Duration) {
	ids := nodeIDs(nodes)
	if rt.cards != nil && slices.Equal(ids, rt.cardIDs) {
		return
	}

	rt.closeCards()
	scope, gen := rt.newScope()
	rt.cards, rt.cardsGen, rt.cardIDs = scope, gen, ids

	for _, node := range nodes {
		startPoller(rt, scope, fmt.Sprintf("node %d snapshot", node.ID), interval,
			func(ctx context.Context) (telemetry.NodeSnapshot, error) {
				snap := telemetry.FetchSnapshot(ctx, rt.src, node)
				return snap, snap.Err
			},
			func(r poller.Result[telemetry.NodeSnapshot]) tea.Msg { return snapshotMsg{gen: gen, result: r} })
	}
}

// startDetail polls the histories, services and info of one node.
func (rt *runtime) startDetail(nodeID int, interval time.Duration, tf *telemetry.TimeFormatter) {
	rt.closeDetail()
	scope, gen := rt.newScope()
	rt.detail, rt.detailGen = scope, gen

	startPoller(rt, scope, fmt.Sprintf("node %d cpu history", nodeID), interval,
		func(ctx context.Context) ([]telemetry.CPUPoint, error) {
			history, err := rt.src.CPUHistory(ctx, nodeID)
			if err != nil {
				return nil, err
			}
			return telemetry.NormalizeCPU(history, tf), nil
		},
		func(r poller.Result[[]telemetry.CPUPoint]) tea.Msg { return cpuHistoryMsg{gen: gen, result: r} })

	startPoller(rt, scope, fmt.Sprintf("node %d ram history", nodeID), interval,
		func(ctx context.Context) (telemetry.RAMSeries, error) {
			history, err := rt.src.RAMHistory(ctx, nodeID)
			if err != nil {
				return telemetry.RAMSeries{}, err
			}
			return telemetry.NormalizeRAM(history, tf), nil
		},
		func(r poller.Result[telemetry.RAMSeries]) tea.Msg { return ramHistoryMsg{gen: gen, result: r} })

	startPoller(rt, scope, fmt.Sprintf("node %d services", nodeID), interval,
		func(ctx context.Context) ([]api.ServiceStatus, error) {
			return rt.src.ServiceStatus(ctx, nodeID)
		},
		func(r poller.Result[[]api.ServiceStatus]) tea.Msg { return servicesMsg{gen: gen, result: r} })

	startPoller(rt, scope, fmt.Sprintf("node %d info", nodeID), interval,
		func(ctx context.Context) (*api.NodeInfo, error) {
			return rt.src.NodeInfo(ctx, nodeID)
		},
		func(r poller.Result[*api.NodeInfo]) tea.Msg { return nodeInfoMsg{gen: gen, result: r} })
}

func (rt *runtime) refreshDashboard() {
	if rt.nodes != nil {
		rt.nodes.Refresh()
	}
	if rt.cards != nil {
		rt.cards.Refresh()
	}
}

func (rt *runtime) refreshDetail() {
	if rt.detail != nil {
		rt.detail.Refresh()
	}
}

func (rt *runtime) closeNodes() {
	if rt.nodes != nil {
		rt.nodes.Close()
		rt.nodes, rt.nodesGen = nil, 0
	}
}

func (rt *runtime) closeCards() {
	if rt.cards != nil {
		rt.cards.Close()
		rt.cards, rt.cardsGen, rt.cardIDs = nil, 0, nil
	}
}

func (rt *runtime) closeDetail() {
	if rt.detail != nil {
		rt.detail.Close()
		rt.detail, rt.detailGen = nil, 0
	}
}

// closeAll stops every poller. Results already queued are dropped by their
// generation check.
func (rt *runtime) closeAll() {
	rt.closeNodes()
	rt.closeCards()
	rt.closeDetail()
}

// shutdown stops everything and releases waitForEvent.
func (rt *runtime) shutdown() {
	rt.closeAll()
	rt.cancel()
}

func nodeIDs(nodes []api.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)
	return ids
}
