package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Validate rejects configs the daemon cannot run with. It is used both at
// startup and as the hot-reload validator.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	every, err := ParseDurationField("poll.interval", cfg.Poll.Interval)
	if err != nil {
		return err
	}
	if every <= 0 {
		return fmt.Errorf("poll.interval is required")
	}
	if _, err := ParseDurationField("poll.timeout", cfg.Poll.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("events.default_ramp_up", cfg.Events.DefaultRampUp); err != nil {
		return err
	}
	if tz := strings.TrimSpace(cfg.Scheduler.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("scheduler.timezone: invalid %q: %w", tz, err)
		}
	}
	if m := cfg.Metrics; m != nil && m.Enabled {
		if addr := strings.TrimSpace(m.Addr); addr != "" {
			if _, _, err := net.SplitHostPort(addr); err != nil {
				return fmt.Errorf("metrics.addr: invalid %q: %w", addr, err)
			}
		}
		if p := strings.TrimSpace(m.Path); p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("metrics.path must start with '/'")
		}
	}
	return nil
}
