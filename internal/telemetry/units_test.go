package telemetry

import (
	"testing"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2 GiB", 2},
		{"512 MiB", 0.5},
		{"1 TiB", 1024},
		{"3.20 GiB", 3.2},
		{"1536MiB", 1.5},
		{"  7.5 GiB ", 7.5},
		{"42", 42},
		{"42 KiB", 42},
		{".5 TiB", 512},
		{"0 GiB", 0},
		{"-1 GiB", -1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseSize_NoNumber(t *testing.T) {
	for _, in := range []string{"", "GiB", "abc", "  ", "N/A GiB", "1e999 GiB"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSize(in)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrParse))
		})
	}
}

func TestParseSize_UnitPrecedence(t *testing.T) {
	// GiB is checked before MiB and TiB.
	got, err := ParseSize("4 GiB (4096 MiB)")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}
