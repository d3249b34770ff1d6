package monitor

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/session"
)

// gatedSource holds its first LatestCPU call until gate is closed, then
// reports a 401 for the current token the way api.Client does.
type gatedSource struct {
	*fakeSource
	mgr     *session.Manager
	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (g *gatedSource) LatestCPU(ctx context.Context, id int) (api.CPUSample, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		<-g.gate
		g.mgr.Unauthorized("tok")
		return api.CPUSample{}, nil
	}
	return g.fakeSource.LatestCPU(ctx, id)
}

func TestProgram_ExpiryDuringScopeClose(t *testing.T) {
	store := &session.MemoryStore{}
	require.NoError(t, store.Save(session.Record{Token: "tok", Username: "admin"}))
	mgr, err := session.NewManager(store)
	require.NoError(t, err)

	src := &gatedSource{
		fakeSource: fleetSource(),
		mgr:        mgr,
		started:    make(chan struct{}),
		gate:       make(chan struct{}),
	}
	m := NewModel(Options{Source: src, Auth: &fakeAuth{loggedIn: true}, Config: testConfig()})
	t.Cleanup(m.Close)
	mgr.OnExpired(m.NotifySessionExpired)

	expired := make(chan struct{})
	var expiredOnce sync.Once
	p := tea.NewProgram(m,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
		tea.WithFilter(func(_ tea.Model, msg tea.Msg) tea.Msg {
			if ev, ok := msg.(eventMsg); ok {
				if _, ok := ev.msg.(SessionExpiredMsg); ok {
					expiredOnce.Do(func() { close(expired) })
				}
			}
			return msg
		}),
	)

	type runResult struct {
		model tea.Model
		err   error
	}
	done := make(chan runResult, 1)
	go func() {
		final, err := p.Run()
		done <- runResult{final, err}
	}()

	select {
	case <-src.started:
	case <-time.After(3 * time.Second):
		p.Kill()
		t.Fatal("snapshot poller never started")
	}

	// Enter closes the dashboard scopes, which waits for the held fetch.
	p.Send(tea.KeyMsg{Type: tea.KeyEnter})
	close(src.gate)

	select {
	case <-expired:
	case <-time.After(3 * time.Second):
		p.Kill()
		t.Fatal("session expiry never reached the program")
	}
	p.Quit()

	var res runResult
	select {
	case res = <-done:
	case <-time.After(3 * time.Second):
		p.Kill()
		t.Fatal("program did not exit")
	}
	require.NoError(t, res.err)

	final := res.model.(Model)
	assert.Equal(t, ScreenLogin, final.CurrentScreen())
	assert.False(t, mgr.LoggedIn())
	require.NotNil(t, final.toast)
	assert.Contains(t, final.toast.text, "Session expired")
}

func TestModel_NotifySessionExpiredDoesNotBlock(t *testing.T) {
	m := newTestModel(t, fleetSource(), &fakeAuth{loggedIn: true})

	// Nothing drains the events channel here.
	for i := 0; i < eventBuffer+1; i++ {
		m.NotifySessionExpired()
	}

	m = pump(t, m, func(m Model) bool { return m.CurrentScreen() == ScreenLogin })
	require.NotNil(t, m.toast)
	assert.Contains(t, m.toast.text, "Session expired")
}
