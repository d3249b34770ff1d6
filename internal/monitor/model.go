package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/config"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/telemetry"
)

// Source is the backend the dashboard reads from. *api.Client satisfies it.
type Source interface {
	telemetry.FleetSource
	CPUHistory(ctx context.Context, nodeID int) ([]api.CPUSample, error)
	RAMHistory(ctx context.Context, nodeID int) ([]api.RAMSample, error)
	ServiceStatus(ctx context.Context, nodeID int) ([]api.ServiceStatus, error)
	NodeInfo(ctx context.Context, nodeID int) (*api.NodeInfo, error)
}

// Auth is the session as the dashboard sees it.
type Auth interface {
	LoggedIn() bool
	Login(ctx context.Context, creds api.LoginCredentials) error
	Logout() error
}

// Options configure a Model.
type Options struct {
	Source Source
	Auth   Auth
	Config *config.Config
	Logger logger.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Layout
const (
	headerHeight = 3
	footerHeight = 2
	cardWidth    = 38
)

// Model is the Bubble Tea model for the monitor.
type Model struct {
	src  Source
	auth Auth
	cfg  *config.Config
	log  logger.Logger
	now  func() time.Time
	tf   *telemetry.TimeFormatter
	rt   *runtime

	screen   Screen
	width    int
	height   int
	quitting bool
	showHelp bool

	// Dashboard
	nodes       []api.Node // server order
	display     []api.Node // sorted for display
	nodesLoaded bool
	snapshots   map[int]telemetry.NodeSnapshot
	history     *History
	stats       telemetry.FleetStats
	lastUpdate  time.Time
	selected    int
	sortOrder   SortOrder

	// Detail
	detail        *detailState
	viewport      viewport.Model
	viewportReady bool

	login *loginState

	spinner  spinner.Model
	toast    *toast
	toastSeq int
	errSeen  map[string]string
}

// NewModel creates the monitor. It starts on the login screen when there is
// no session.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	loc, err := cfg.Display.Location()
	if err != nil {
		loc = time.Local
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent)),
	)

	m := Model{
		src:       opts.Source,
		auth:      opts.Auth,
		cfg:       cfg,
		log:       log,
		now:       now,
		tf:        telemetry.NewTimeFormatter(loc, cfg.Display.Clock == config.Clock24h),
		rt:        newRuntime(opts.Source, log, cfg.Poll.DiscardStale),
		screen:    ScreenDashboard,
		snapshots: make(map[int]telemetry.NodeSnapshot),
		history:   NewHistory(DefaultHistorySize),
		errSeen:   make(map[string]string),
		spinner:   sp,
	}
	if opts.Auth != nil && !opts.Auth.LoggedIn() {
		m.screen = ScreenLogin
		m.login = newLoginState("")
	}
	return m
}

// Init starts the event pump, the spinner and the first screen.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.rt.waitForEvent(), m.spinner.Tick}
	if m.screen == ScreenLogin {
		cmds = append(cmds, m.login.form.Init())
	} else {
		m.rt.startNodes(m.cfg.Poll.Nodes)
	}
	return tea.Batch(cmds...)
}

// NotifySessionExpired queues a SessionExpiredMsg and returns at once. It is
// safe to call from any goroutine, including a poller's fetch.
func (m Model) NotifySessionExpired() {
	m.rt.notifyExpired()
}

// Close stops every poller. Call it after the program exits.
func (m Model) Close() {
	m.rt.shutdown()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		switch m.screen {
		case ScreenLogin:
			return m, m.updateLogin(msg)
		case ScreenDetail:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.viewportReady {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		if m.screen == ScreenDetail {
			m.updateDetailViewportContent()
		}
		if m.screen == ScreenLogin {
			return m, m.updateLogin(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.screen == ScreenDetail {
			m.updateDetailViewportContent()
		}
		return m, cmd

	case eventMsg:
		cmd := m.handleEvent(msg.msg)
		return m, tea.Batch(cmd, m.rt.waitForEvent())

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}

	case SessionExpiredMsg:
		return m, m.expireSession()

	case loginResultMsg:
		return m, m.handleLoginResult(msg)

	default:
		if m.screen == ScreenLogin {
			return m, m.updateLogin(msg)
		}
	}

	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	switch m.screen {
	case ScreenLogin:
		return m.renderLogin()
	case ScreenDetail:
		return m.renderDetailView()
	default:
		return m.renderDashboard()
	}
}

func (m *Model) handleEvent(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SessionExpiredMsg:
		return m.expireSession()
	case nodesMsg:
		if msg.gen != m.rt.nodesGen {
			return nil
		}
		return m.applyNodes(msg.result.Value, msg.result.Err)
	case snapshotMsg:
		if msg.gen != m.rt.cardsGen {
			return nil
		}
		return m.applySnapshot(msg.result.Value, msg.result.At)
	case cpuHistoryMsg:
		if msg.gen != m.rt.detailGen || m.detail == nil {
			return nil
		}
		return m.applyCPUHistory(msg.result)
	case ramHistoryMsg:
		if msg.gen != m.rt.detailGen || m.detail == nil {
			return nil
		}
		return m.applyRAMHistory(msg.result)
	case servicesMsg:
		if msg.gen != m.rt.detailGen || m.detail == nil {
			return nil
		}
		return m.applyServices(msg.result)
	case nodeInfoMsg:
		if msg.gen != m.rt.detailGen || m.detail == nil {
			return nil
		}
		return m.applyNodeInfo(msg.result)
	}
	return nil
}

// applyNodes takes a new node list. A failed fetch keeps the previous list.
func (m *Model) applyNodes(nodes []api.Node, err error) tea.Cmd {
	if err != nil {
		return m.reportError("nodes", "Failed to fetch nodes", err)
	}
	m.clearError("nodes")

	m.nodes = nodes
	m.nodesLoaded = true

	ids := make(map[int]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	for id := range m.snapshots {
		if _, ok := ids[id]; !ok {
			delete(m.snapshots, id)
		}
	}
	m.history.Retain(nodeIDs(nodes))

	prev, hadPrev := m.SelectedNode()
	m.display = append(m.display[:0:0], nodes...)
	m.sortNodes()
	if !hadPrev || !m.selectByID(prev.ID) {
		m.selected = min(m.selected, max(len(m.display)-1, 0))
	}
	m.recomputeStats()

	m.rt.startCards(nodes, m.cfg.Poll.Snapshot)
	return nil
}

// applySnapshot records one node's latest readings. A failed snapshot
// replaces the previous one so the card shows the error.
func (m *Model) applySnapshot(snap telemetry.NodeSnapshot, at time.Time) tea.Cmd {
	m.snapshots[snap.Node.ID] = snap
	m.lastUpdate = at
	m.history.Push(snap)
	m.recomputeStats()
	if m.sortOrder == SortByCPU || m.sortOrder == SortByRAM {
		m.sortNodes()
	}

	key := fmt.Sprintf("node-%d", snap.Node.ID)
	if !snap.OK() {
		return m.reportError(key, "Error fetching data for "+snap.Node.Name, snap.Err)
	}
	m.clearError(key)
	return nil
}

func (m *Model) recomputeStats() {
	snaps := make([]telemetry.NodeSnapshot, 0, len(m.snapshots))
	for _, n := range m.nodes {
		if s, ok := m.snapshots[n.ID]; ok {
			snaps = append(snaps, s)
		}
	}
	m.stats = telemetry.Aggregate(m.nodes, snaps)
}

// Stats returns the current fleet stats.
func (m Model) Stats() telemetry.FleetStats { return m.stats }

// CurrentScreen returns the screen being shown.
func (m Model) CurrentScreen() Screen { return m.screen }

// SelectedNode returns the node under the cursor.
func (m Model) SelectedNode() (api.Node, bool) {
	if m.selected >= 0 && m.selected < len(m.display) {
		return m.display[m.selected], true
	}
	return api.Node{}, false
}

// SecondsSinceUpdate returns how many seconds have passed since the last snapshot.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.lastUpdate).Seconds())
}

// enterDashboard stops any detail polling and resumes the dashboard.
func (m *Model) enterDashboard() tea.Cmd {
	m.rt.closeAll()
	m.detail = nil
	m.screen = ScreenDashboard
	m.showHelp = false
	m.rt.startNodes(m.cfg.Poll.Nodes)
	// The node list poller restarts the cards once it has the list.
	return nil
}

// enterDetail stops dashboard polling and opens node's detail view.
func (m *Model) enterDetail(node api.Node) tea.Cmd {
	m.rt.closeAll()
	m.detail = newDetailState(node)
	m.screen = ScreenDetail
	m.showHelp = false
	m.rt.startDetail(node.ID, m.cfg.Poll.History, m.tf)
	if m.viewportReady {
		m.viewport.GotoTop()
	}
	m.updateDetailViewportContent()
	return nil
}

// expireSession shows the login form unless it is already showing.
func (m *Model) expireSession() tea.Cmd {
	if m.screen == ScreenLogin {
		return nil
	}
	return m.enterLogin(toastError, "Session expired, please log in again")
}

// enterLogin stops all polling and shows the login form with a toast.
func (m *Model) enterLogin(kind toastKind, text string) tea.Cmd {
	m.rt.closeAll()
	m.detail = nil
	m.showHelp = false
	m.screen = ScreenLogin
	username := ""
	if m.login != nil {
		username = m.login.username
	}
	m.login = newLoginState(username)
	m.login.resize(m.width)
	return tea.Batch(m.login.form.Init(), m.showToast(kind, text))
}

func (m *Model) logout() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	if err := m.auth.Logout(); err != nil {
		return m.reportError("logout", "Logout failed", err)
	}
	return m.enterLogin(toastSuccess, "Logged out")
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.rt.closeAll()
	return tea.Quit
}

// sortNodes orders display by the current sort order, keeping the cursor
// on the same node.
func (m *Model) sortNodes() {
	if len(m.display) == 0 {
		return
	}

	selectedID, hadSelection := 0, false
	if node, ok := m.SelectedNode(); ok {
		selectedID, hadSelection = node.ID, true
	}

	switch m.sortOrder {
	case SortDefault:
		m.display = append(m.display[:0], m.nodes...)

	case SortByName:
		sort.SliceStable(m.display, func(i, j int) bool {
			a, b := strings.ToLower(m.display[i].Name), strings.ToLower(m.display[j].Name)
			if a != b {
				return a < b
			}
			return m.display[i].ID < m.display[j].ID
		})

	case SortByCPU:
		sort.SliceStable(m.display, func(i, j int) bool {
			a, okA := m.cpuOf(m.display[i].ID)
			b, okB := m.cpuOf(m.display[j].ID)
			// Nodes without data go to the end
			if okA != okB {
				return okA
			}
			return a > b
		})

	case SortByRAM:
		sort.SliceStable(m.display, func(i, j int) bool {
			a, okA := m.ramPercentOf(m.display[i].ID)
			b, okB := m.ramPercentOf(m.display[j].ID)
			if okA != okB {
				return okA
			}
			return a > b
		})
	}

	if hadSelection {
		m.selectByID(selectedID)
	}
}

// selectByID moves the cursor to the node with id, reporting whether it is shown.
func (m *Model) selectByID(id int) bool {
	for i, n := range m.display {
		if n.ID == id {
			m.selected = i
			return true
		}
	}
	return false
}

func (m Model) cpuOf(nodeID int) (float64, bool) {
	s, ok := m.snapshots[nodeID]
	if !ok || !s.OK() {
		return 0, false
	}
	return s.CPU.CPU, true
}

func (m Model) ramPercentOf(nodeID int) (float64, bool) {
	s, ok := m.snapshots[nodeID]
	if !ok || !s.OK() {
		return 0, false
	}
	u, ok := telemetry.UsageOf(s.RAM)
	return u.Percent, ok
}
