package cli

import (
	"testing"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_PasswordStdin(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "admin\n", "login", "--username", "admin", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin")
	assert.Contains(t, out, env.sessionPath)

	rec, err := session.NewFileStore(env.sessionPath).Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "admin", rec.Username)
	assert.Equal(t, env.apiURL, rec.APIURL)
	assert.NotEmpty(t, rec.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "wrong\n", "login", "--username", "admin", "--password-stdin")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Contains(t, errors.Summary(err), "Invalid credentials")

	rec, err := session.NewFileStore(env.sessionPath).Load()
	require.NoError(t, err)
	assert.Nil(t, rec, "a failed login stores nothing")
}

func TestLogin_PasswordStdinNeedsUsername(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "admin\n", "login", "--password-stdin")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLogin_EmptyPassword(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "\n", "login", "--username", "admin", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, errors.Summary(err), "Empty password")
}

func TestWhoami(t *testing.T) {
	env := newCLIEnv(t)

	t.Run("not logged in", func(t *testing.T) {
		_, err := env.run(t, "", "whoami")
		require.Error(t, err)
		assert.Equal(t, "Not logged in", errors.Summary(err))
	})

	env.login(t)

	t.Run("human", func(t *testing.T) {
		out, err := env.run(t, "", "whoami")
		require.NoError(t, err)
		assert.Contains(t, out, "admin")
		assert.Contains(t, out, env.apiURL)
		assert.Contains(t, out, "from now", "a fresh devserver token expires in the future")
	})

	t.Run("json", func(t *testing.T) {
		out, err := env.run(t, "", "whoami", "--json")
		require.NoError(t, err)

		var s SessionOutput
		envl := decodeEnvelope(t, out, &s)
		assert.True(t, envl.Success)
		assert.Equal(t, "admin", s.Username)
		assert.Len(t, s.Fingerprint, 12)
		require.NotNil(t, s.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(12*time.Hour), *s.ExpiresAt, time.Minute)
		assert.False(t, s.Expired)
	})
}

func TestLogout(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	rec, err := session.NewFileStore(env.sessionPath).Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	out, err = env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestNodes_RequiresSession(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "", "nodes")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
}

func TestNodes_Human(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "", "nodes")
	require.NoError(t, err)
	for _, name := range []string{"edge-01", "edge-02", "db-01", "cache-01"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Total Nodes")
	assert.Contains(t, out, "Operational")
}

func TestNodes_JSON(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "", "nodes", "--json")
	require.NoError(t, err)

	var nodes NodesOutput
	envl := decodeEnvelope(t, out, &nodes)
	require.True(t, envl.Success)
	require.Len(t, nodes.Nodes, 4)

	assert.Equal(t, 1, nodes.Nodes[0].ID)
	assert.Equal(t, "edge-01", nodes.Nodes[0].Name)
	for _, n := range nodes.Nodes {
		require.NotNil(t, n.CPU, n.Name)
		require.NotNil(t, n.RAM, n.Name)
		assert.Empty(t, n.Error)
		assert.Contains(t, []string{"High Load", "Normal"}, n.Badge)
	}
	assert.Equal(t, 4, nodes.Stats.TotalNodes)
	// 8 + 16 + 32 + 64 GiB
	assert.InDelta(t, 120.0, nodes.Stats.TotalRAM.Total, 0.01)
}

func TestNodes_ExpiredSession(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, session.NewFileStore(env.sessionPath).Save(session.Record{
		Token:     "not-a-valid-token",
		Username:  "admin",
		APIURL:    env.apiURL,
		CreatedAt: time.Now(),
	}))

	_, err := env.run(t, "", "nodes", "--json")
	require.Error(t, err)
	assert.Equal(t, "Session expired", errors.Summary(err))
	assert.Equal(t, ErrCodeNotLoggedIn, ErrorToJSON(err).Code)

	rec, err := session.NewFileStore(env.sessionPath).Load()
	require.NoError(t, err)
	assert.Nil(t, rec, "a 401 clears the stored session")
}

func TestNode_JSON(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "", "node", "3", "--json")
	require.NoError(t, err)

	var d NodeDetailOutput
	envl := decodeEnvelope(t, out, &d)
	require.True(t, envl.Success)

	assert.Equal(t, "db-01", d.Node.Name)
	require.NotNil(t, d.Node.RAM)
	assert.InDelta(t, 32.0, d.Node.RAM.Total, 0.01)

	require.NotEmpty(t, d.CPUHistory.Points)
	assert.LessOrEqual(t, d.CPUHistory.Min, d.CPUHistory.Max)
	for i := 1; i < len(d.CPUHistory.Points); i++ {
		assert.Less(t, d.CPUHistory.Points[i-1].Timestamp, d.CPUHistory.Points[i].Timestamp, "history is oldest first")
	}
	assert.Equal(t, 40.0, d.RAMHistory.Ceiling, "32 GiB rounds up to the next ten")

	require.NotEmpty(t, d.Services)
	last := d.Services[len(d.Services)-1]
	assert.False(t, last.Up())
	assert.True(t, last.Reachable())

	require.NotNil(t, d.Info)
	assert.Equal(t, "AMD", d.Info.CPUVendor)
}

func TestNode_Human(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "", "node", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "cache-01")
	assert.Contains(t, out, "Node #4")
	assert.Contains(t, out, "Unreachable")
	assert.Contains(t, out, "Kernel Version")
}

func TestNode_NotFound(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	_, err := env.run(t, "", "node", "99")
	require.Error(t, err)
	assert.Equal(t, ErrCodeNodeNotFound, ErrorToJSON(err).Code)
}

func TestNode_InvalidID(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "", "node", "abc")
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfigInvalid, ErrorToJSON(err).Code)
}

func TestAPIURLFlagOverridesConfig(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	_, err := runCLI(t, "", "--config", env.cfgPath, "--api-url", "http://127.0.0.1:1/view", "nodes")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}
