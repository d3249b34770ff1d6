package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ferroscope/ferro/internal/errors"
)

// ToastDuration is how long a notification stays in the footer.
const ToastDuration = 4 * time.Second

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

type toast struct {
	id   int
	kind toastKind
	text string
}

type toastExpiredMsg struct{ id int }

var (
	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorHealthy).
				Bold(true).
				Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true).
			Padding(0, 1)
)

// showToast replaces the current notification and schedules its expiry.
func (m *Model) showToast(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, kind: kind, text: text}
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// reportError shows an error toast for key unless the same error text was
// already reported for it. Repeated failures of one poller toast once.
func (m *Model) reportError(key, prefix string, err error) tea.Cmd {
	text := prefix + ": " + errors.Summary(err)
	if m.errSeen[key] == text {
		return nil
	}
	m.errSeen[key] = text
	return m.showToast(toastError, text)
}

// clearError forgets the last error for key so the next one toasts again.
func (m *Model) clearError(key string) {
	delete(m.errSeen, key)
}

func (m Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	if m.toast.kind == toastError {
		return toastErrorStyle.Render(GlyphError + " " + m.toast.text)
	}
	return toastSuccessStyle.Render(GlyphOK + " " + m.toast.text)
}
