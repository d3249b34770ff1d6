package cli

import (
	"github.com/ferroscope/ferro/internal/devserver"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard of every node",
	Long: `Open the live dashboard: one card per node with its latest CPU and RAM,
fleet totals, and a detail view with history charts, service health and
system information.

Without a stored session the dashboard opens on the login form.

Keys:
  ↑/↓ or j/k    select a node
  enter         open the node detail view
  esc           back to the dashboard
  s             cycle sort order (default, name, CPU, RAM)
  r             refresh now
  L             log out
  ?             help
  q             quit

Set FERRO_LOG to a file path to capture logs while the dashboard runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand()
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the monitoring API",
	Long: `Sign in and store the session token.

Prompts for a username and password in a terminal. For scripts, pipe the
password in:

  echo "$PASSWORD" | ferro login --username admin --password-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginCommand(cmd)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutCommand(cmd)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	Long: `Show who is signed in, against which API, and when the session expires.
Reads only the local session file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiCommand(cmd)
	},
}

var nodesCmd = &cobra.Command{
	Use:     "nodes",
	Aliases: []string{"ls"},
	Short:   "List nodes with their latest readings",
	Long: `List every node with its latest CPU and RAM readings and fleet totals.

Examples:
  ferro nodes
  ferro nodes --json | jq '.data.nodes[] | select(.badge == "High Load")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return nodesCommand(cmd)
	},
}

var nodeCmd = &cobra.Command{
	Use:   "node <id>",
	Short: "Show one node in detail",
	Long: `Show a node's latest readings, CPU and RAM history, service health and
system information.

Examples:
  ferro node 2
  ferro node 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return nodeCommand(cmd, args[0])
	},
}

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local API with synthetic telemetry",
	Long: `Serve the monitoring API with generated readings, for trying the
dashboard without a real backend.

Example:
  ferro devserver --addr :9000
  ferro --api-url http://localhost:9000/view monitor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return devserverCommand(cmd)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for ferro.

Examples:
  # Bash
  ferro completion bash > /etc/bash_completion.d/ferro

  # Zsh
  ferro completion zsh > "${fpath[1]}/_ferro"

  # Fish
  ferro completion fish > ~/.config/fish/completions/ferro.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// login command flags
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (prefills the prompt)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")
	AddJSONFlag(loginCmd)

	AddJSONFlag(whoamiCmd)
	AddJSONFlag(nodesCmd)
	AddJSONFlag(nodeCmd)

	// devserver command flags
	devserverCmd.Flags().StringVar(&devAddr, "addr", ":9000", "listen address")
	devserverCmd.Flags().StringVar(&devUsername, "username", devserver.DefaultUsername, "accepted username")
	devserverCmd.Flags().StringVar(&devPassword, "password", devserver.DefaultPassword, "accepted password")
	devserverCmd.Flags().StringVar(&devSecret, "secret", "", "token signing secret (default: random per run)")
	devserverCmd.Flags().DurationVar(&devTokenTTL, "token-ttl", devserver.DefaultTokenTTL, "session token lifetime")
	devserverCmd.Flags().IntVar(&devNodes, "nodes", 0, "number of generated nodes (0 uses the built-in list)")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}
