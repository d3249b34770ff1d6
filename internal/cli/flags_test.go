package cli

import (
	"testing"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    int
		wantErr bool
	}{
		{
			name: "plain id",
			arg:  "3",
			want: 3,
		},
		{
			name: "surrounding whitespace",
			arg:  " 12 ",
			want: 12,
		},
		{
			name:    "zero",
			arg:     "0",
			wantErr: true,
		},
		{
			name:    "negative",
			arg:     "-1",
			wantErr: true,
		},
		{
			name:    "not a number",
			arg:     "edge-01",
			wantErr: true,
		},
		{
			name:    "empty",
			arg:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNodeID(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddJSONFlag(t *testing.T) {
	defer func() { machineMode = false }()

	cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, args []string) {}}
	AddJSONFlag(cmd)

	flag := cmd.Flags().Lookup("json")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)

	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute())
	assert.True(t, MachineMode())
}

func TestSpinnerDisabledInMachineMode(t *testing.T) {
	machineMode = true
	defer func() { machineMode = false }()

	assert.False(t, spinnerEnabled())
}

func TestDevNodeList(t *testing.T) {
	assert.Nil(t, devNodeList(0), "zero keeps the built-in fleet")

	nodes := devNodeList(3)
	require.Len(t, nodes, 3)
	assert.Equal(t, 1, nodes[0].ID)
	assert.Equal(t, "node-03", nodes[2].Name)
}

func TestDevURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/view", devURL(":9000"))
	assert.Equal(t, "http://0.0.0.0:8080/view", devURL("0.0.0.0:8080"))
}
