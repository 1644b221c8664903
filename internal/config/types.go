package config

// Config is the on-disk daemon configuration (JSON or YAML).
//
// Duration fields accept either ISO-8601 ("PT10S") or Go duration strings ("10s").
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Poll      PollConfig      `json:"poll"`
	Events    EventsConfig    `json:"events"`
	Metrics   *MetricsConfig  `json:"metrics,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SchedulerConfig controls the trigger service.
type SchedulerConfig struct {
	Enabled bool `json:"enabled"`

	// Trigger timezone (IANA, e.g. "Europe/Amsterdam"). Empty means Local.
	Timezone string `json:"timezone,omitempty"`
}

// PollConfig controls how often the VEN polls for new events.
//
// Example:
//
//	"poll": { "interval": "PT10S", "randomize": true, "timeout": "5s" }
type PollConfig struct {
	Interval  string `json:"interval"`
	Randomize bool   `json:"randomize,omitempty"`
	// Timeout bounds a single poll run. Empty or "0s" means interval.
	Timeout string `json:"timeout,omitempty"`
}

// EventsConfig points at the event source used in place of a transport.
type EventsConfig struct {
	File string `json:"file"`
	// DefaultRampUp applies to events that do not carry their own ramp-up.
	DefaultRampUp string `json:"default_ramp_up,omitempty"`
}

// MetricsConfig controls the optional Prometheus endpoint.
//
// Prefer binding to localhost (e.g. "127.0.0.1:9464").
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:9464"
	Path    string `json:"path,omitempty"` // default: "/metrics"

	// Pprof mounts net/http/pprof under /debug/pprof/ on the same listener.
	Pprof bool `json:"pprof,omitempty"`
}
