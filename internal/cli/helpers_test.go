package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ferroscope/ferro/internal/devserver"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/require"
)

// cliEnv is a devserver plus a config file pointing ferro at it.
type cliEnv struct {
	apiURL      string
	cfgPath     string
	sessionPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	srv, err := devserver.New(devserver.Options{
		Secret: []byte("cli-test-secret"),
		Logger: logger.Noop(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	env := &cliEnv{
		apiURL:      ts.URL + devserver.BasePath,
		cfgPath:     filepath.Join(dir, ".ferro.yaml"),
		sessionPath: filepath.Join(dir, "session.yaml"),
	}
	cfg := fmt.Sprintf("version: 1\napi:\n  url: %s\nsession:\n  file: %s\n", env.apiURL, env.sessionPath)
	require.NoError(t, os.WriteFile(env.cfgPath, []byte(cfg), 0o644))
	return env
}

// resetFlags clears flag variables left over from a previous Execute.
func resetFlags() {
	cfgFile = ""
	apiURLFlag = ""
	noColor = false
	verbose = false
	machineMode = false
	versionShort = false
	loginUsername = ""
	loginPasswordStdin = false
}

// runCLI executes the real root command with stdin and captures stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, stdin, append([]string{"--config", e.cfgPath, "--no-color"}, args...)...)
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	_, err := e.run(t, "admin\n", "login", "--username", "admin", "--password-stdin")
	require.NoError(t, err)
}

// decodeEnvelope parses a JSON envelope and re-decodes its data into out.
func decodeEnvelope(t *testing.T, raw string, out interface{}) JSONEnvelope {
	t.Helper()
	var env JSONEnvelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env), raw)
	if out != nil && env.Data != nil {
		data, err := json.Marshal(env.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return env
}
