package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .ferro.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
	Poll    PollConfig    `yaml:"poll" mapstructure:"poll"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
}

// APIConfig points ferro at the monitoring backend.
type APIConfig struct {
	// URL is the base URL; endpoint names are appended to it.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SessionConfig controls where the auth token is persisted.
type SessionConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// PollConfig holds refresh intervals for the live views.
type PollConfig struct {
	// Snapshot is the refresh interval for per-node latest CPU/RAM.
	Snapshot time.Duration `yaml:"snapshot" mapstructure:"snapshot"`

	// History is the refresh interval for charts, services and node info.
	History time.Duration `yaml:"history" mapstructure:"history"`

	// Nodes refreshes the node list. Zero disables periodic refresh.
	Nodes time.Duration `yaml:"nodes" mapstructure:"nodes"`

	// DiscardStale drops responses older than one already applied.
	DiscardStale bool `yaml:"discard_stale" mapstructure:"discard_stale"`
}

// DisplayConfig controls how values are rendered.
type DisplayConfig struct {
	// Clock is "12h" or "24h".
	Clock string `yaml:"clock" mapstructure:"clock"`

	// Timezone is an IANA zone name or "Local".
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// HighLoad is the CPU percentage above which a node is flagged.
	HighLoad float64 `yaml:"high_load" mapstructure:"high_load"`

	Thresholds Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
}

// Thresholds define warning and critical percentages for metric coloring.
type Thresholds struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

const (
	Clock12h = "12h"
	Clock24h = "24h"
)

// Location resolves the configured time zone.
func (d DisplayConfig) Location() (*time.Location, error) {
	if d.Timezone == "" || d.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(d.Timezone)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			URL: DefaultAPIURL,
		},
		Session: SessionConfig{
			File: DefaultSessionFile,
		},
		Poll: PollConfig{
			Snapshot: 5 * time.Second,
			History:  10 * time.Second,
		},
		Display: DisplayConfig{
			Clock:    Clock12h,
			Timezone: "Local",
			HighLoad: 80,
			Thresholds: Thresholds{
				Warning:  70,
				Critical: 90,
			},
		},
	}
}
