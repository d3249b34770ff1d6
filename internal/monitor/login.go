package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/errors"
)

const loginFormWidth = 48

// loginState holds the embedded login form. It lives behind a pointer
// because the form binds to its fields.
type loginState struct {
	username   string
	password   string
	form       *huh.Form
	submitting bool
	err        string
}

func newLoginState(username string) *loginState {
	ls := &loginState{username: username}
	ls.form = NewLoginForm(&ls.username, &ls.password)
	return ls
}

// NewLoginForm builds the username and password form shared by the TUI and
// `ferro login`.
func NewLoginForm(username, password *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("Enter your username").
				Value(username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				Placeholder("Enter your password").
				EchoMode(huh.EchoModePassword).
				Value(password),
		),
	).WithWidth(loginFormWidth).WithShowHelp(false)
}

func (ls *loginState) resize(width int) {
	if width > 0 {
		ls.form = ls.form.WithWidth(min(loginFormWidth, width-4))
	}
}

// updateLogin forwards msg to the form and submits it once complete.
func (m *Model) updateLogin(msg tea.Msg) tea.Cmd {
	if m.login == nil || m.login.submitting {
		return nil
	}

	form, cmd := m.login.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.login.form = f
	}

	switch m.login.form.State {
	case huh.StateCompleted:
		m.login.submitting = true
		m.login.err = ""
		return tea.Batch(cmd, m.loginCmd(api.LoginCredentials{
			Username: strings.TrimSpace(m.login.username),
			Password: m.login.password,
		}))
	case huh.StateAborted:
		return m.quit()
	}
	return cmd
}

func (m Model) loginCmd(creds api.LoginCredentials) tea.Cmd {
	auth, ctx := m.auth, m.rt.ctx
	return func() tea.Msg {
		return loginResultMsg{err: auth.Login(ctx, creds)}
	}
}

func (m *Model) handleLoginResult(msg loginResultMsg) tea.Cmd {
	if m.login == nil {
		return nil
	}
	if msg.err != nil {
		username := m.login.username
		m.login = newLoginState(username)
		m.login.err = errors.Summary(msg.err)
		m.login.resize(m.width)
		m.log.Info("login failed for %s", username)
		return tea.Batch(m.login.form.Init(), m.showToast(toastError, "Login failed"))
	}

	m.log.Info("logged in as %s", m.login.username)
	m.login = nil
	return tea.Batch(m.enterDashboard(), m.showToast(toastSuccess, "Login successful!"))
}

var (
	loginBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	loginTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)

func (m Model) renderLogin() string {
	var lines []string
	lines = append(lines,
		loginTitleStyle.Render("Ferroscope Monitor"),
		LabelStyle.Render("Sign In"),
		"",
	)
	if m.login != nil {
		if m.login.submitting {
			lines = append(lines, m.spinner.View()+" "+LabelStyle.Render("Signing in..."))
		} else {
			lines = append(lines, m.login.form.View())
		}
		if m.login.err != "" {
			lines = append(lines, "", ErrorTextStyle.Render(GlyphError+" "+m.login.err))
		}
	}

	box := loginBoxStyle.Render(strings.Join(lines, "\n"))
	footer := m.renderToast()
	if footer == "" {
		footer = FooterStyle.Render("enter submit | ctrl+c quit")
	}

	if m.width == 0 || m.height == 0 {
		return box + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, box)
	return body + "\n" + footer
}
