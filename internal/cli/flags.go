package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/ui"
	"github.com/spf13/cobra"
)

// AddJSONFlag registers --json, which switches the command to machine mode.
func AddJSONFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&machineMode, "json", false, "output as JSON")
}

// ParseNodeID parses a node id argument. Ids are positive integers.
func ParseNodeID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid node id", arg),
			"Node ids are positive integers. Run 'ferro nodes' to list them.")
	}
	return id, nil
}

// spinnerEnabled reports whether progress spinners may draw on stderr.
func spinnerEnabled() bool {
	return !machineMode && ui.IsTerminal(os.Stderr)
}
