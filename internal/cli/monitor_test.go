package cli

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTUILogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")
	t.Setenv(LogFileEnv, path)

	closeLog, err := setupTUILogging()
	require.NoError(t, err)
	log.Printf("poller started")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "poller started")
}

func TestSetupTUILogging_DebugDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv(LogFileEnv, "")
	t.Setenv(logger.DebugEnv, "1")

	closeLog, err := setupTUILogging()
	require.NoError(t, err)
	closeLog()

	_, err = os.Stat(filepath.Join(dir, defaultDebugLog))
	assert.NoError(t, err)
}

func TestSetupTUILogging_Discard(t *testing.T) {
	t.Setenv(LogFileEnv, "")
	t.Setenv(logger.DebugEnv, "")

	closeLog, err := setupTUILogging()
	require.NoError(t, err)
	closeLog()
}

func TestSessionAuth(t *testing.T) {
	env := newCLIEnv(t)
	mgr, err := session.NewManager(&session.MemoryStore{})
	require.NoError(t, err)

	client := api.New(env.apiURL, api.WithTokenSource(mgr), api.WithAuthSink(mgr))
	auth := sessionAuth{mgr: mgr, client: client, apiURL: env.apiURL}
	assert.False(t, auth.LoggedIn())

	err = auth.Login(context.Background(), api.LoginCredentials{Username: "admin", Password: "nope"})
	require.Error(t, err)
	assert.False(t, auth.LoggedIn())

	require.NoError(t, auth.Login(context.Background(), api.LoginCredentials{Username: "admin", Password: "admin"}))
	assert.True(t, auth.LoggedIn())
	assert.Equal(t, env.apiURL, mgr.Info().APIURL)

	nodes, err := client.ListNodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 4)

	require.NoError(t, auth.Logout())
	assert.False(t, auth.LoggedIn())
}
