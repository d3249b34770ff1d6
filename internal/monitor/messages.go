package monitor

import (
	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/poller"
	"github.com/ferroscope/ferro/internal/telemetry"
)

// SessionExpiredMsg tells the dashboard the session was invalidated by a 401.
// The CLI delivers it through Model.NotifySessionExpired from the session
// manager's expiry callback.
type SessionExpiredMsg struct{}

type nodesMsg struct {
	gen    uint64
	result poller.Result[[]api.Node]
}

type snapshotMsg struct {
	gen    uint64
	result poller.Result[telemetry.NodeSnapshot]
}

type cpuHistoryMsg struct {
	gen    uint64
	result poller.Result[[]telemetry.CPUPoint]
}

type ramHistoryMsg struct {
	gen    uint64
	result poller.Result[telemetry.RAMSeries]
}

type servicesMsg struct {
	gen    uint64
	result poller.Result[[]api.ServiceStatus]
}

type nodeInfoMsg struct {
	gen    uint64
	result poller.Result[*api.NodeInfo]
}

type loginResultMsg struct {
	err error
}
