package app

import (
	"strings"
	"time"

	"leadr/internal/config"
	"leadr/internal/task/scheduler"
	"leadr/pkg/cronspec"
	logx "leadr/pkg/logx"
)

const (
	defaultMetricsAddr = "127.0.0.1:9464"
	defaultMetricsPath = "/metrics"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapSchedulerConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		Enabled:  cfg.Scheduler.Enabled,
		Timezone: cfg.Scheduler.Timezone,
	}
}

// pollPlan is the resolved poll section: the cron descriptor for the
// interval and the per-run timeout (defaults to the interval).
type pollPlan struct {
	Every      time.Duration
	Descriptor cronspec.Descriptor
	Timeout    time.Duration
}

func mapPollConfig(cfg *config.Config) (pollPlan, error) {
	every, err := config.ParseDurationField("poll.interval", cfg.Poll.Interval)
	if err != nil {
		return pollPlan{}, err
	}
	desc, err := cronspec.Config(every, cfg.Poll.Randomize)
	if err != nil {
		return pollPlan{}, err
	}
	timeout, err := config.ParseDurationOrDefault("poll.timeout", cfg.Poll.Timeout, every)
	if err != nil {
		return pollPlan{}, err
	}
	return pollPlan{Every: every, Descriptor: desc, Timeout: timeout}, nil
}

func mapRampUp(cfg *config.Config) (time.Duration, error) {
	return config.ParseDurationField("events.default_ramp_up", cfg.Events.DefaultRampUp)
}

// mapMetricsConfig returns the listen address and path, or ok=false when
// the endpoint is disabled.
func mapMetricsConfig(cfg *config.Config) (addr, path string, pprof, ok bool) {
	m := cfg.Metrics
	if m == nil || !m.Enabled {
		return "", "", false, false
	}
	addr = strings.TrimSpace(m.Addr)
	if addr == "" {
		addr = defaultMetricsAddr
	}
	path = strings.TrimSpace(m.Path)
	if path == "" {
		path = defaultMetricsPath
	}
	return addr, path, m.Pprof, true
}
