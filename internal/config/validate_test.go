package config

import (
	"testing"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.API.URL = "" },
			wantErr: "api.url is empty",
		},
		{
			name:    "non-http url",
			mutate:  func(c *Config) { c.API.URL = "ftp://monitor/view" },
			wantErr: "http:// or https://",
		},
		{
			name:    "url without host",
			mutate:  func(c *Config) { c.API.URL = "http:///view" },
			wantErr: "has no host",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: "api.timeout",
		},
		{
			name:    "snapshot too short",
			mutate:  func(c *Config) { c.Poll.Snapshot = 100 * time.Millisecond },
			wantErr: "poll.snapshot",
		},
		{
			name:    "history too short",
			mutate:  func(c *Config) { c.Poll.History = 0 },
			wantErr: "poll.history",
		},
		{
			name:   "node refresh disabled",
			mutate: func(c *Config) { c.Poll.Nodes = 0 },
		},
		{
			name:    "node refresh too short",
			mutate:  func(c *Config) { c.Poll.Nodes = time.Millisecond },
			wantErr: "poll.nodes",
		},
		{
			name:    "unknown clock",
			mutate:  func(c *Config) { c.Display.Clock = "36h" },
			wantErr: "display.clock",
		},
		{
			name:    "unknown zone",
			mutate:  func(c *Config) { c.Display.Timezone = "Mars/Olympus_Mons" },
			wantErr: "display.timezone",
		},
		{
			name:   "utc zone",
			mutate: func(c *Config) { c.Display.Timezone = "UTC" },
		},
		{
			name:    "high load out of range",
			mutate:  func(c *Config) { c.Display.HighLoad = 120 },
			wantErr: "display.high_load",
		},
		{
			name:    "warning above critical",
			mutate:  func(c *Config) { c.Display.Thresholds = Thresholds{Warning: 95, Critical: 90} },
			wantErr: "needs to be less than critical",
		},
		{
			name:    "critical out of range",
			mutate:  func(c *Config) { c.Display.Thresholds = Thresholds{Warning: 50, Critical: 101} },
			wantErr: "critical must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDisplayLocation(t *testing.T) {
	loc, err := DisplayConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = DisplayConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = DisplayConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
