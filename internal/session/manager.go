// Package session owns the persisted auth token.
//
// The Manager is the api.TokenSource and api.AuthSink for every client in
// the process. A 401 clears the token exactly once per login, however many
// in-flight requests report it, and fires the expiry callbacks once.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
)

// Authenticator performs the login round trip.
type Authenticator interface {
	Login(ctx context.Context, creds api.LoginCredentials) (*api.LoginResponse, error)
}

// Info describes the current session.
type Info struct {
	LoggedIn    bool
	Username    string
	APIURL      string
	Fingerprint string
	CreatedAt   time.Time
	Claims      Claims
	IsJWT       bool
}

// Manager holds the current token and reacts to 401s.
type Manager struct {
	store Store
	log   logger.Logger
	now   func() time.Time

	mu        sync.Mutex
	rec       *Record
	listeners []func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager loads any persisted session from store.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store: store,
		log:   logger.NewEnvLogger("[session]"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	rec, err := store.Load()
	if err != nil {
		return nil, err
	}
	m.rec = rec
	if rec != nil {
		m.log.Debug("loaded session %s", Fingerprint(rec.Token))
	}
	return m, nil
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return ""
	}
	return m.rec.Token
}

// LoggedIn reports whether a token is held.
func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// OnExpired registers fn to run when a 401 ends the session.
//
// Callbacks run synchronously, in registration order, on the goroutine that
// called Unauthorized. That is usually a request goroutine of an api.Client,
// so fn must not block: hand the event off and return.
func (m *Manager) OnExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Unauthorized implements api.AuthSink. Only a 401 for the token currently
// held ends the session; repeats and late responses for an older token are
// ignored. The store is cleared and the OnExpired callbacks run on the
// calling goroutine before Unauthorized returns.
func (m *Manager) Unauthorized(token string) {
	m.mu.Lock()
	if m.rec == nil || m.rec.Token != token {
		m.mu.Unlock()
		return
	}
	fp := Fingerprint(m.rec.Token)
	m.rec = nil
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	m.log.Info("session %s rejected by server, signing out", fp)
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clearing session: %v", err)
	}
	for _, fn := range listeners {
		fn()
	}
}

// Login authenticates and persists the new token.
func (m *Manager) Login(ctx context.Context, auth Authenticator, apiURL string, creds api.LoginCredentials) error {
	resp, err := auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	if resp == nil {
		return errors.New(errors.ErrNetwork,
			"No response from server",
			"Check the API connection and api.url in your config")
	}
	if strings.TrimSpace(resp.Token) == "" {
		return errors.New(errors.ErrAuth,
			"Invalid credentials",
			"Check your username and password and try again")
	}

	rec := Record{
		Token:     resp.Token,
		Username:  creds.Username,
		APIURL:    apiURL,
		CreatedAt: m.now(),
	}
	if err := m.store.Save(rec); err != nil {
		return err
	}

	m.mu.Lock()
	m.rec = &rec
	m.mu.Unlock()

	m.log.Info("signed in as %s (session %s)", creds.Username, Fingerprint(rec.Token))
	return nil
}

// Logout forgets the token. Expiry callbacks are not fired.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.rec = nil
	m.mu.Unlock()
	return m.store.Clear()
}

// Info returns a description of the current session.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rec == nil {
		return Info{}
	}
	info := Info{
		LoggedIn:    true,
		Username:    m.rec.Username,
		APIURL:      m.rec.APIURL,
		Fingerprint: Fingerprint(m.rec.Token),
		CreatedAt:   m.rec.CreatedAt,
	}
	info.Claims, info.IsJWT = InspectToken(m.rec.Token)
	return info
}
