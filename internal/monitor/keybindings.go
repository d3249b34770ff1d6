package monitor

import tea "github.com/charmbracelet/bubbletea"

// SortOrder defines how nodes are sorted on the dashboard.
type SortOrder int

const (
	// SortDefault keeps the order the server listed the nodes in.
	SortDefault SortOrder = iota
	SortByName
	SortByCPU
	SortByRAM
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByCPU:
		return "CPU"
	case SortByRAM:
		return "RAM"
	default:
		return "default"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return SortOrder((int(s) + 1) % 4)
}

// Screen is the view currently shown.
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenDetail
	ScreenLogin
)

// String names the screen.
func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "dashboard"
	case ScreenDetail:
		return "detail"
	case ScreenLogin:
		return "login"
	default:
		return "unknown"
	}
}

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeyCycleSort   = "s"
	KeyLogout      = "L"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyExpand      = "enter"
	KeyCollapse    = "esc"
	KeyBack        = "backspace"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input. It returns true if the key was
// handled; unhandled keys on the login screen go to the form, and on the
// detail screen to the viewport.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyQuitAlt {
		return true, m.quit()
	}

	// The login form owns every other key.
	if m.screen == ScreenLogin {
		return false, nil
	}

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	if key == KeyQuit {
		return true, m.quit()
	}

	if m.screen == ScreenDetail {
		switch key {
		case KeyCollapse, KeyBack:
			return true, m.enterDashboard()
		case KeyRefresh:
			m.rt.refreshDetail()
			return true, m.showToast(toastSuccess, "Node data refreshed")
		case KeyLogout:
			return true, m.logout()
		}
		return false, nil
	}

	switch key {
	case KeyRefresh:
		m.rt.refreshDashboard()
		return true, m.showToast(toastSuccess, "Dashboard data refreshed")

	case KeyCycleSort:
		m.sortOrder = m.sortOrder.Next()
		m.sortNodes()
		return true, nil

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.display)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if len(m.display) > 0 {
			m.selected = len(m.display) - 1
		}
		return true, nil

	case KeyExpand:
		if node, ok := m.SelectedNode(); ok {
			return true, m.enterDetail(node)
		}
		return true, nil

	case KeyLogout:
		return true, m.logout()
	}

	return false, nil
}
