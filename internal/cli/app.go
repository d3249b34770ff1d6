package cli

import (
	"strings"
	"sync/atomic"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/config"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/session"
)

// app is what every API-facing command works with: resolved config, the
// session manager and a client that authenticates through it.
type app struct {
	cfg     *config.Config
	store   *session.FileStore
	session *session.Manager
	client  *api.Client
	log     logger.Logger

	expired atomic.Bool
}

// loadApp resolves config (with --api-url applied) and opens the session.
func loadApp() (*app, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if apiURLFlag != "" {
		cfg.API.URL = strings.TrimRight(apiURLFlag, "/")
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}

	store := session.NewFileStore(cfg.Session.File)
	mgr, err := session.NewManager(store, session.WithLogger(cliLogger("[session]")))
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		store:   store,
		session: mgr,
		log:     cliLogger("[ferro]"),
	}
	opts := []api.Option{
		api.WithTokenSource(mgr),
		api.WithAuthSink(mgr),
		api.WithLogger(cliLogger("[api]")),
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	a.client = api.New(cfg.API.URL, opts...)
	mgr.OnExpired(func() { a.expired.Store(true) })
	return a, nil
}

// requireSession fails unless a token is stored.
func (a *app) requireSession() error {
	if a.session.LoggedIn() {
		return nil
	}
	return errors.New(errors.ErrAuth,
		"Not logged in",
		"Run 'ferro login' to sign in to "+a.cfg.API.URL)
}

// checkExpired reports a 401 seen by any request since loadApp. The client
// turns 401s into empty results, so commands check this after fetching.
func (a *app) checkExpired() error {
	if !a.expired.Load() {
		return nil
	}
	return errors.New(errors.ErrAuth,
		"Session expired",
		"Run 'ferro login' to sign in again")
}

// cliLogger logs only with --verbose or FERRO_DEBUG so one-shot commands
// keep their output clean.
func cliLogger(prefix string) logger.Logger {
	if logger.DebugEnabled() {
		return logger.NewEnvLogger(prefix)
	}
	return logger.Noop()
}
