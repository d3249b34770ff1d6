package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
)

// MinPollInterval is the shortest accepted refresh interval.
const MinPollInterval = 500 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but ferro only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade ferro to a newer release")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section in your "+ConfigFileName+".")
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'poll' section in your "+ConfigFileName+".")
	}

	if err := validateDisplay(cfg.Display); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'display' section in your "+ConfigFileName+".")
	}

	return nil
}

func validateAPI(api APIConfig) error {
	if api.URL == "" {
		return fmt.Errorf("api.url is empty - point it at the monitoring API, e.g. %s", DefaultAPIURL)
	}
	u, err := url.Parse(api.URL)
	if err != nil {
		return fmt.Errorf("api.url '%s' isn't a valid URL: %v", api.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url '%s' needs an http:// or https:// scheme", api.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.url '%s' has no host", api.URL)
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout can't be negative")
	}
	return nil
}

func validatePoll(p PollConfig) error {
	if p.Snapshot < MinPollInterval {
		return fmt.Errorf("poll.snapshot %v is too short - use at least %v", p.Snapshot, MinPollInterval)
	}
	if p.History < MinPollInterval {
		return fmt.Errorf("poll.history %v is too short - use at least %v", p.History, MinPollInterval)
	}
	if p.Nodes != 0 && p.Nodes < MinPollInterval {
		return fmt.Errorf("poll.nodes %v is too short - use 0 to disable or at least %v", p.Nodes, MinPollInterval)
	}
	return nil
}

func validateDisplay(d DisplayConfig) error {
	if d.Clock != Clock12h && d.Clock != Clock24h {
		return fmt.Errorf("display.clock '%s' isn't valid - use '12h' or '24h'", d.Clock)
	}
	if _, err := d.Location(); err != nil {
		return fmt.Errorf("display.timezone '%s' isn't a known time zone", d.Timezone)
	}
	if d.HighLoad < 0 || d.HighLoad > 100 {
		return fmt.Errorf("display.high_load must be between 0 and 100, got %v", d.HighLoad)
	}
	return validateThresholds(d.Thresholds)
}

func validateThresholds(t Thresholds) error {
	if t.Warning < 0 || t.Warning > 100 {
		return fmt.Errorf("display.thresholds.warning must be between 0 and 100, got %d", t.Warning)
	}
	if t.Critical < 0 || t.Critical > 100 {
		return fmt.Errorf("display.thresholds.critical must be between 0 and 100, got %d", t.Critical)
	}
	if t.Warning >= t.Critical {
		return fmt.Errorf("display.thresholds.warning (%d) needs to be less than critical (%d)", t.Warning, t.Critical)
	}
	return nil
}
