package config

import (
	"sort"
	"strings"

	logx "leadr/pkg/logx"
)

// SummarizeConfigChange returns a sorted list of changed sections and
// structured attrs describing the new values of those sections.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Scheduler.Enabled != newCfg.Scheduler.Enabled ||
		strings.TrimSpace(oldCfg.Scheduler.Timezone) != strings.TrimSpace(newCfg.Scheduler.Timezone) {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.Bool("scheduler.enabled", newCfg.Scheduler.Enabled),
			logx.String("scheduler.timezone", strings.TrimSpace(newCfg.Scheduler.Timezone)),
		)
	}

	if PollChanged(oldCfg, newCfg) {
		changed = append(changed, "poll")
		attrs = append(attrs,
			logx.String("poll.interval", strings.TrimSpace(newCfg.Poll.Interval)),
			logx.Bool("poll.randomize", newCfg.Poll.Randomize),
			logx.String("poll.timeout", strings.TrimSpace(newCfg.Poll.Timeout)),
		)
	}

	if strings.TrimSpace(oldCfg.Events.File) != strings.TrimSpace(newCfg.Events.File) ||
		strings.TrimSpace(oldCfg.Events.DefaultRampUp) != strings.TrimSpace(newCfg.Events.DefaultRampUp) {
		changed = append(changed, "events")
		attrs = append(attrs,
			logx.String("events.file", strings.TrimSpace(newCfg.Events.File)),
			logx.String("events.default_ramp_up", strings.TrimSpace(newCfg.Events.DefaultRampUp)),
		)
	}

	oM, nM := derefMetrics(oldCfg.Metrics), derefMetrics(newCfg.Metrics)
	if oM != nM {
		changed = append(changed, "metrics")
		attrs = append(attrs,
			logx.Bool("metrics.enabled", nM.Enabled),
			logx.String("metrics.addr", strings.TrimSpace(nM.Addr)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

// PollChanged reports whether the poll schedule needs to be re-registered.
func PollChanged(oldCfg, newCfg *Config) bool {
	if oldCfg == nil || newCfg == nil {
		return oldCfg != newCfg
	}
	return strings.TrimSpace(oldCfg.Poll.Interval) != strings.TrimSpace(newCfg.Poll.Interval) ||
		oldCfg.Poll.Randomize != newCfg.Poll.Randomize ||
		strings.TrimSpace(oldCfg.Poll.Timeout) != strings.TrimSpace(newCfg.Poll.Timeout)
}

func derefMetrics(m *MetricsConfig) MetricsConfig {
	if m == nil {
		return MetricsConfig{}
	}
	return *m
}
