package cli

import (
	"context"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/monitor"
	"github.com/ferroscope/ferro/internal/session"
)

// LogFileEnv names the file the dashboard logs to while it owns the screen.
const LogFileEnv = "FERRO_LOG"

const defaultDebugLog = "ferro-debug.log"

// sessionAuth lets the dashboard sign in and out through the session manager.
type sessionAuth struct {
	mgr    *session.Manager
	client *api.Client
	apiURL string
}

func (s sessionAuth) LoggedIn() bool { return s.mgr.LoggedIn() }

func (s sessionAuth) Login(ctx context.Context, creds api.LoginCredentials) error {
	return s.mgr.Login(ctx, s.client, s.apiURL, creds)
}

func (s sessionAuth) Logout() error { return s.mgr.Logout() }

// monitorCommand starts the TUI monitoring dashboard.
func monitorCommand() error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	closeLog, err := setupTUILogging()
	if err != nil {
		return err
	}
	defer closeLog()

	model := monitor.NewModel(monitor.Options{
		Source: a.client,
		Auth:   sessionAuth{mgr: a.session, client: a.client, apiURL: a.cfg.API.URL},
		Config: a.cfg,
		Logger: logger.NewEnvLogger("[monitor]"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	a.session.OnExpired(model.NotifySessionExpired)

	_, err = p.Run()

	// Stop every poller before the process exits.
	model.Close()

	return err
}

// setupTUILogging sends the standard logger to a file (FERRO_LOG, or
// ferro-debug.log under FERRO_DEBUG) or discards it, since stderr belongs to
// the dashboard.
func setupTUILogging() (func(), error) {
	path := os.Getenv(LogFileEnv)
	if path == "" && logger.DebugEnabled() {
		path = defaultDebugLog
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	f, err := tea.LogToFile(path, "ferro")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open log file "+path,
			"Check that "+LogFileEnv+" points to a writable path")
	}
	return func() {
		f.Close()
		log.SetOutput(os.Stderr)
	}, nil
}
