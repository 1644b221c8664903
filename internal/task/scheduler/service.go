package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	logx "leadr/pkg/logx"
)

const runErrorLogEvery = 5 * time.Second

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg: cfg,
		log: log,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser:    cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		runCtx:    ctx,
		runCancel: cancel,
		errLog:    map[string]*rate.Sometimes{},
		timers:    map[string]*time.Timer{},
		onceVer:   map[string]uint64{},
	}
}

// Enabled reports the current config flag. (Thread-safe; Apply() may run concurrently.)
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Apply swaps the config. A timezone change restarts cron so schedules are
// re-evaluated in the new location.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldTZ := strings.TrimSpace(s.cfg.Timezone)
	s.cfg = cfg
	if s.c == nil {
		return
	}
	if oldTZ != strings.TrimSpace(cfg.Timezone) {
		s.restartLocked()
	}
}

// Start starts cron triggering. Schedules added before Start are registered now.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	if s.runCtx.Err() != nil {
		s.runCtx, s.runCancel = context.WithCancel(context.Background())
	}
	// Stop also cancels runs when the parent context ends.
	go func(runCtx context.Context, cancel context.CancelFunc) {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}(s.runCtx, s.runCancel)

	s.startLocked()
	s.log.Info("service started", logx.String("tz", s.loc.String()), logx.Int("schedules", len(s.defs)))
}

// Stop stops triggering, cancels in-flight runs and disarms one-time timers.
// Definitions are kept so a later Start resumes them.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.log.Info("stop requested")

	s.mu.Lock()
	c := s.c
	s.c = nil
	s.runCancel()
	for i := range s.defs {
		s.defs[i].entryID = 0
	}
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}

	s.tmu.Lock()
	for name, t := range s.timers {
		_ = t.Stop()
		delete(s.timers, name)
		delete(s.onceVer, name)
	}
	s.tmu.Unlock()

	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

func (s *Service) startLocked() {
	s.loc = s.loadLocationLocked()
	l := cronLogger{log: s.log}
	s.c = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l)),
	)
	for i := range s.defs {
		if err := s.addCronLocked(&s.defs[i]); err != nil {
			s.log.Error("schedule register failed", logx.String("name", s.defs[i].name), logx.String("spec", s.defs[i].spec), logx.Err(err))
		}
	}
	s.c.Start()
}

func (s *Service) restartLocked() {
	if s.c != nil {
		// Running jobs may be waiting on s.mu; don't block on them here.
		s.c.Stop()
	}
	s.startLocked()
	s.log.Info("service restarted", logx.String("tz", s.loc.String()), logx.Int("schedules", len(s.defs)))
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

// reportRunError logs a failed run, at most once per runErrorLogEvery per schedule.
func (s *Service) reportRunError(name string, err error) {
	s.errMu.Lock()
	st, ok := s.errLog[name]
	if !ok {
		st = &rate.Sometimes{First: 1, Interval: runErrorLogEvery}
		s.errLog[name] = st
	}
	s.errMu.Unlock()

	st.Do(func() {
		s.log.Warn("schedule run failed", logx.String("schedule", name), logx.Err(err))
	})
}

// cronLogger adapts logx to cron.Logger. cron logs every wake-up at info, so
// that goes to trace.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Trace("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
