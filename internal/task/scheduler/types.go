package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	logx "leadr/pkg/logx"
)

// Config controls the scheduler (trigger) service.
type Config struct {
	Enabled  bool
	Timezone string // IANA TZ, e.g. "Europe/Amsterdam"
}

// Job is the unit of work triggered by a schedule.
type Job func(ctx context.Context) error

type scheduleDef struct {
	id      string
	name    string
	spec    string        // cron spec, for display and re-registration
	sched   cron.Schedule // set for descriptor schedules (may carry jitter)
	timeout time.Duration
	job     Job
	entryID cron.EntryID
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location

	parser cron.Parser
	c      *cron.Cron
	defs   []scheduleDef

	// runCtx is canceled by Stop so in-flight jobs observe shutdown.
	runCtx    context.Context
	runCancel context.CancelFunc

	// Run error log throttling: key is schedule name.
	errMu  sync.Mutex
	errLog map[string]*rate.Sometimes

	// one-time timers
	tmu     sync.Mutex
	timers  map[string]*time.Timer
	onceVer map[string]uint64
}

type ScheduleInfo struct {
	ID      string
	Name    string
	Spec    string
	Timeout time.Duration
	Next    time.Time
	Prev    time.Time
}

type Snapshot struct {
	Enabled   bool
	Running   bool
	Timezone  string
	Schedules []ScheduleInfo
	Pending   []string // names of armed one-time timers
}
