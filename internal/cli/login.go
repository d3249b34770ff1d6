package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/monitor"
	"github.com/ferroscope/ferro/internal/ui"
	"github.com/spf13/cobra"
)

// login flags
var (
	loginUsername      string
	loginPasswordStdin bool
)

// loginCommand signs in and stores the session token.
func loginCommand(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	creds, err := readCredentials(cmd.InOrStdin())
	if err != nil {
		return err
	}

	err = ui.WithSpinner(spinnerEnabled(), "Signing in to "+a.cfg.API.URL, func() error {
		return a.session.Login(cmd.Context(), a.client, a.cfg.API.URL, creds)
	})
	if err != nil {
		return err
	}

	if machineMode {
		return WriteJSONSuccess(cmd.OutOrStdout(), sessionOutputFrom(a, time.Now()))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess+" Logged in as "+creds.Username))
	fmt.Fprintln(out, ui.MutedStyle().Render("  Session saved to "+a.store.Path()))
	return nil
}

// readCredentials takes the password from stdin with --password-stdin and
// prompts with a form otherwise.
func readCredentials(stdin io.Reader) (api.LoginCredentials, error) {
	if loginPasswordStdin {
		if loginUsername == "" {
			return api.LoginCredentials{}, errors.New(errors.ErrConfig,
				"--password-stdin needs --username",
				"Example: echo \"$PASSWORD\" | ferro login --username admin --password-stdin")
		}
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return api.LoginCredentials{}, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't read the password from stdin", "")
		}
		password := strings.TrimRight(string(raw), "\r\n")
		if password == "" {
			return api.LoginCredentials{}, errors.New(errors.ErrConfig,
				"Empty password on stdin",
				"Pipe the password into 'ferro login --password-stdin'")
		}
		return api.LoginCredentials{Username: loginUsername, Password: password}, nil
	}

	if machineMode || !ui.IsTerminal(os.Stdin) {
		return api.LoginCredentials{}, errors.New(errors.ErrConfig,
			"No terminal for the login prompt",
			"Use --username with --password-stdin for non-interactive login")
	}

	username := loginUsername
	var password string
	if err := monitor.NewLoginForm(&username, &password).Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return api.LoginCredentials{}, errors.New(errors.ErrAuth, "Login cancelled", "")
		}
		return api.LoginCredentials{}, errors.WrapWithCode(err, errors.ErrConfig, "Login prompt failed", "")
	}
	return api.LoginCredentials{Username: strings.TrimSpace(username), Password: password}, nil
}

// logoutCommand forgets the stored session.
func logoutCommand(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !a.session.LoggedIn() {
		fmt.Fprintln(out, ui.MutedStyle().Render("Not logged in"))
		return nil
	}
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess+" Logged out"))
	return nil
}

// SessionOutput is the --json form of whoami and login.
type SessionOutput struct {
	Username    string     `json:"username"`
	APIURL      string     `json:"apiUrl"`
	Fingerprint string     `json:"fingerprint"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Expired     bool       `json:"expired"`
}

func sessionOutputFrom(a *app, now time.Time) SessionOutput {
	info := a.session.Info()
	return SessionOutput{
		Username:    info.Username,
		APIURL:      info.APIURL,
		Fingerprint: info.Fingerprint,
		CreatedAt:   info.CreatedAt,
		ExpiresAt:   info.Claims.ExpiresAt,
		Expired:     info.Claims.Expired(now),
	}
}

// whoamiCommand describes the stored session without contacting the API.
func whoamiCommand(cmd *cobra.Command) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	now := time.Now()
	s := sessionOutputFrom(a, now)
	if machineMode {
		return WriteJSONSuccess(cmd.OutOrStdout(), s)
	}

	fmt.Fprint(cmd.OutOrStdout(), ui.RenderKeyValues([]ui.KeyValue{
		{Key: "User", Value: s.Username},
		{Key: "API", Value: s.APIURL},
		{Key: "Session", Value: s.Fingerprint},
		{Key: "Signed in", Value: humanize.RelTime(s.CreatedAt, now, "ago", "from now")},
		{Key: "Expires", Value: describeExpiry(s, now)},
	}))
	return nil
}

func describeExpiry(s SessionOutput, now time.Time) string {
	switch {
	case s.ExpiresAt == nil:
		return "no expiry information"
	case s.Expired:
		return "expired " + humanize.RelTime(*s.ExpiresAt, now, "ago", "from now")
	default:
		return humanize.RelTime(*s.ExpiresAt, now, "ago", "from now")
	}
}
