package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	n    atomic.Int32
	last atomic.Value
}

func (s *countingSink) Unauthorized(token string) {
	s.n.Add(1)
	s.last.Store(token)
}

// mutableToken lets a test change the token between requests.
type mutableToken struct {
	mu  sync.Mutex
	tok string
}

func (m *mutableToken) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *mutableToken) set(tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
}

type recorded struct {
	method  string
	path    string
	query   string
	auth    string
	hasAuth bool
	reqID   string
	body    string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, hasAuth := r.Header["Authorization"]
		mu.Lock()
		reqs = append(reqs, recorded{
			method:  r.Method,
			path:    r.URL.Path,
			query:   r.URL.RawQuery,
			auth:    r.Header.Get("Authorization"),
			hasAuth: hasAuth,
			reqID:   r.Header.Get(RequestIDHeader),
			body:    string(body),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_RequestShape(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Node{{ID: 1, Name: "n1"}})
	})

	c := New(srv.URL+"/view", WithTokenSource(StaticToken("tok-123")), WithLogger(logger.Noop()))
	_, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	_, err = c.CPUHistory(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	first := (*reqs)[0]
	assert.Equal(t, http.MethodPost, first.method)
	assert.Equal(t, "/view/get_node_list", first.path)
	assert.Empty(t, first.query)
	assert.Equal(t, "tok-123", first.auth, "token is sent raw, without a scheme")
	assert.NotEmpty(t, first.reqID)

	second := (*reqs)[1]
	assert.Equal(t, "/view/cpu_stat", second.path)
	assert.Equal(t, "node=7", second.query)
	assert.NotEqual(t, first.reqID, second.reqID)
}

func TestClient_Endpoints(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_node_list":
			writeJSON(w, 200, []Node{{ID: 1, Name: "n1"}, {ID: 2, Name: "n2"}})
		case "/get_latest_cpu":
			writeJSON(w, 200, map[string]any{"value": 45.2, "date_time": "2024-01-01T10:00:00Z"})
		case "/get_latest_ram":
			writeJSON(w, 200, RAMSample{Free: "2 GiB", Total: "8 GiB", Timestamp: "2024-01-01T10:00:00Z"})
		case "/cpu_stat":
			writeJSON(w, 200, []map[string]any{
				{"value": 30.0, "date_time": "2024-01-01T10:00:10Z"},
				{"value": 20.0, "date_time": "2024-01-01T10:00:00Z"},
			})
		case "/ram_stat":
			writeJSON(w, 200, []RAMSample{{Free: "1 GiB", Total: "4 GiB", Timestamp: "2024-01-01T10:00:00Z"}})
		case "/node_services":
			writeJSON(w, 200, []Service{{ServiceName: "nginx"}})
		case "/service_current_stat":
			writeJSON(w, 200, []ServiceStatus{
				{ServiceName: "nginx", Status: "up", ServiceStatus: "active"},
				{ServiceName: "db", Status: "down", ServiceStatus: "Unreachable"},
			})
		case "/get_node_info":
			writeJSON(w, 200, NodeInfo{SystemName: "Debian", KernelVersion: "6.1", OSVersion: "12", Uptime: 3720, CPUThreads: 8, CPUVendor: "AMD"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c := New(srv.URL, WithClock(func() time.Time { return fixed }), WithLogger(logger.Noop()))
	ctx := context.Background()

	nodes, err := c.ListNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Node{{ID: 1, Name: "n1"}, {ID: 2, Name: "n2"}}, nodes)

	cpu, err := c.LatestCPU(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, CPUSample{CPU: 45.2, Timestamp: "2024-01-01T10:00:00Z"}, cpu)

	ram, err := c.LatestRAM(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, ram)
	assert.Equal(t, "8 GiB", ram.Total)

	hist, err := c.CPUHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []CPUSample{
		{CPU: 30, Timestamp: "2024-01-01T10:00:10Z"},
		{CPU: 20, Timestamp: "2024-01-01T10:00:00Z"},
	}, hist, "order is preserved as received")

	ramHist, err := c.RAMHistory(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, ramHist, 1)

	services, err := c.NodeServices(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []Service{{ServiceName: "nginx"}}, services)

	statuses, err := c.ServiceStatus(ctx, 1)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Up())
	assert.False(t, statuses[1].Reachable())
	assert.False(t, statuses[1].Up())

	info, err := c.NodeInfo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, int64(3720), info.Uptime)
	assert.Equal(t, 8, info.CPUThreads)
}

func TestClient_NoContentDefaults(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	for _, status := range []int{http.StatusNoContent, http.StatusOK} {
		srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if status == http.StatusOK {
				writeJSON(w, status, nil) // JSON null
				return
			}
			w.WriteHeader(status)
		})

		c := New(srv.URL, WithClock(func() time.Time { return fixed }), WithLogger(logger.Noop()))
		ctx := context.Background()

		nodes, err := c.ListNodes(ctx)
		require.NoError(t, err)
		assert.NotNil(t, nodes)
		assert.Empty(t, nodes)

		cpu, err := c.LatestCPU(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, CPUSample{CPU: 0, Timestamp: "2024-05-06T07:08:09.000Z"}, cpu)

		ram, err := c.LatestRAM(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, ram)

		hist, err := c.CPUHistory(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, hist)

		ramHist, err := c.RAMHistory(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, ramHist)
		assert.Empty(t, ramHist)

		services, err := c.NodeServices(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, services)

		statuses, err := c.ServiceStatus(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, statuses)

		info, err := c.NodeInfo(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, info)

		login, err := c.Login(ctx, LoginCredentials{Username: "a"})
		require.NoError(t, err)
		assert.Nil(t, login)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	})

	sink := &countingSink{}
	log := logger.NewBufferLogger()
	c := New(srv.URL, WithAuthSink(sink), WithTokenSource(StaticToken("expired")), WithLogger(log))
	ctx := context.Background()

	nodes, err := c.ListNodes(ctx)
	require.NoError(t, err, "401 is not a per-call error")
	assert.Empty(t, nodes)

	cpu, err := c.LatestCPU(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, cpu.CPU)
	assert.NotEmpty(t, cpu.Timestamp)

	info, err := c.NodeInfo(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, info)

	assert.Equal(t, int32(3), sink.n.Load(), "each 401 is published; the sink dedupes")
	assert.Equal(t, "expired", sink.last.Load(), "the rejected token is reported")
	assert.True(t, log.Contains("debug", "401"))
}

func TestClient_LoginRejectedIsNotPublished(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	sink := &countingSink{}
	c := New(srv.URL, WithAuthSink(sink), WithTokenSource(StaticToken("old")), WithLogger(logger.Noop()))

	resp, err := c.Login(context.Background(), LoginCredentials{Username: "admin"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Equal(t, http.StatusUnauthorized, errors.StatusOf(err))
	assert.Nil(t, resp)
	assert.Zero(t, sink.n.Load())

	require.Len(t, *reqs, 1)
	assert.False(t, (*reqs)[0].hasAuth, "login carries no Authorization header")
	assert.JSONEq(t, `{"username":"admin","password":""}`, (*reqs)[0].body)
}

func TestClient_Login(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var creds LoginCredentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username == "admin" && creds.Password == "secret" {
			writeJSON(w, 200, LoginResponse{Token: "jwt-token"})
			return
		}
		writeJSON(w, 200, map[string]string{})
	})

	c := New(srv.URL, WithLogger(logger.Noop()))

	resp, err := c.Login(context.Background(), LoginCredentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "jwt-token", resp.Token)

	resp, err = c.Login(context.Background(), LoginCredentials{Username: "admin", Password: "wrong"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Empty(t, resp.Token, "caller treats a missing token as invalid credentials")
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "message field", status: 500, body: `{"message":"database unavailable"}`, wantMsg: "database unavailable"},
		{name: "no message field", status: 503, body: `{"error":"x"}`, wantMsg: "API error: 503"},
		{name: "non-json body", status: 404, body: `not found`, wantMsg: "API error: 404"},
		{name: "empty body", status: 400, body: ``, wantMsg: "API error: 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			sink := &countingSink{}
			c := New(srv.URL, WithAuthSink(sink), WithLogger(logger.Noop()))

			nodes, err := c.ListNodes(context.Background())
			require.Error(t, err)
			assert.Nil(t, nodes)
			assert.True(t, errors.IsCode(err, errors.ErrServer))
			assert.Equal(t, tt.status, errors.StatusOf(err))
			assert.Equal(t, tt.wantMsg, errors.Summary(err))
			assert.Zero(t, sink.n.Load())
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "not-a-list"`))
	})
	c := New(srv.URL, WithLogger(logger.Noop()))

	_, err := c.ListNodes(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrServer))
	assert.Contains(t, errors.Summary(err), "Malformed response from get_node_list")
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithLogger(logger.Noop()))
	_, err := c.LatestRAM(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}

func TestClient_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	c := New(srv.URL, WithLogger(logger.Noop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListNodes(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	c := New(srv.URL, WithTimeout(50*time.Millisecond), WithLogger(logger.Noop()))
	_, err := c.ListNodes(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}

func TestClient_TokenReadPerRequest(t *testing.T) {
	srv, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []Node{})
	})

	tok := &mutableToken{tok: "first"}
	c := New(srv.URL, WithTokenSource(tok), WithLogger(logger.Noop()))

	_, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	tok.set("")
	_, err = c.ListNodes(context.Background())
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	assert.Equal(t, "first", (*reqs)[0].auth)
	assert.Equal(t, "", (*reqs)[1].auth, "a cleared token is observed by the next request")
}
