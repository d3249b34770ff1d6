package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ferroscope/ferro/internal/api"
	"github.com/ferroscope/ferro/internal/devserver"
	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/ferroscope/ferro/internal/ui"
	"github.com/spf13/cobra"
)

// devserver flags
var (
	devAddr     string
	devUsername string
	devPassword string
	devSecret   string
	devTokenTTL time.Duration
	devNodes    int
)

// devserverCommand serves synthetic telemetry until interrupted.
func devserverCommand(cmd *cobra.Command) error {
	if devNodes < 0 {
		return errors.New(errors.ErrConfig,
			"--nodes can't be negative",
			"Use 0 for the built-in node list")
	}

	srv, err := devserver.New(devserver.Options{
		Username: devUsername,
		Password: devPassword,
		Secret:   []byte(devSecret),
		TokenTTL: devTokenTTL,
		Nodes:    devNodeList(devNodes),
		Logger:   logger.NewEnvLogger("[devserver]"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess+" Development API on "+devURL(devAddr)))
	fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("  Sign in with %s / %s. Ctrl+C stops the server.", devUsername, devPassword)))

	return srv.Listen(ctx, devAddr)
}

// devNodeList returns nil (the built-in nodes) for 0, otherwise n generated nodes.
func devNodeList(n int) []api.Node {
	if n == 0 {
		return nil
	}
	nodes := make([]api.Node, n)
	for i := range nodes {
		nodes[i] = api.Node{ID: i + 1, Name: fmt.Sprintf("node-%02d", i+1)}
	}
	return nodes
}

// devURL is the API base URL clients should use for addr.
func devURL(addr string) string {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + devserver.BasePath
}
