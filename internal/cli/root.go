package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile    string
	apiURLFlag string
	noColor    bool
	verbose    bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "ferro",
	Short: "Ferroscope Monitor - node telemetry in your terminal",
	Long: `Ferroscope Monitor shows CPU, RAM, service health and system
information for every node behind a monitoring API.

Run 'ferro login' once, then 'ferro monitor' for the live dashboard or
'ferro nodes' for a one-shot listing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if verbose {
			os.Setenv(logger.DebugEnv, "1")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .ferro.yaml, then ~/.config/ferro/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "monitoring API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(handleError(os.Stdout, os.Stderr, err))
	}
}

// handleError reports err the way the current output mode expects and
// returns the exit code.
func handleError(stdout, stderr io.Writer, err error) int {
	if machineMode {
		_ = WriteJSONFromError(stdout, err)
		return 1
	}

	if isUnknownCommandError(err) {
		fmt.Fprintln(stderr, ui.ErrorStyle().Render(ui.SymbolFail+" "+err.Error()))
		if name := extractUnknownCommand(err); name != "" {
			if suggestions := rootCmd.SuggestionsFor(name); len(suggestions) > 0 {
				fmt.Fprintf(stderr, "\nDid you mean: %s?\n", strings.Join(suggestions, ", "))
			}
		}
		fmt.Fprintln(stderr, "\nRun 'ferro --help' for usage.")
		return 1
	}

	var fErr *errors.Error
	if stderrors.As(err, &fErr) {
		fmt.Fprint(stderr, fErr.Error())
		return 1
	}
	fmt.Fprintln(stderr, ui.ErrorStyle().Render(ui.SymbolFail+" "+err.Error()))
	return 1
}

// isUnknownCommandError checks if the error is a cobra usage error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "ferro"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
