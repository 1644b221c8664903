package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"leadr/pkg/cronspec"
	logx "leadr/pkg/logx"
)

var ErrDuplicate = errors.New("scheduler: duplicate schedule name")

// AddDescriptor registers job on the recurrence described by desc.
// A descriptor with Jitter delays each firing by up to Jitter seconds.
func (s *Service) AddDescriptor(name string, desc cronspec.Descriptor, timeout time.Duration, job Job) (string, error) {
	sched, err := desc.Schedule()
	if err != nil {
		return "", err
	}
	return s.add(scheduleDef{name: name, spec: desc.Spec(), sched: sched, timeout: timeout, job: job})
}

// ReplaceDescriptor registers job under name, swapping out any schedule
// already registered there. If desc does not build, the previous schedule
// stays in place.
func (s *Service) ReplaceDescriptor(name string, desc cronspec.Descriptor, timeout time.Duration, job Job) (string, error) {
	sched, err := desc.Schedule()
	if err != nil {
		return "", err
	}
	def := scheduleDef{name: strings.TrimSpace(name), spec: desc.Spec(), sched: sched, timeout: timeout, job: job}
	if def.name == "" {
		return "", fmt.Errorf("scheduler: name required")
	}
	if def.job == nil {
		return "", fmt.Errorf("scheduler: job required")
	}
	def.id = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		if err := s.addCronLocked(&def); err != nil {
			return "", err
		}
	}
	for i, d := range s.defs {
		if d.name != def.name {
			continue
		}
		if s.c != nil && d.entryID != 0 {
			s.c.Remove(d.entryID)
		}
		s.defs[i] = def
		s.log.Info("schedule replaced", logx.String("name", def.name), logx.String("spec", def.spec), logx.Duration("timeout", def.timeout))
		return def.id, nil
	}
	s.defs = append(s.defs, def)
	s.log.Info("schedule added", logx.String("name", def.name), logx.String("spec", def.spec), logx.Duration("timeout", def.timeout))
	return def.id, nil
}

// AddCron registers job on a raw cron expression (5 or 6 fields, or @descriptors).
func (s *Service) AddCron(name, spec string, timeout time.Duration, job Job) (string, error) {
	spec = strings.TrimSpace(spec)
	if _, err := s.parser.Parse(spec); err != nil {
		return "", fmt.Errorf("scheduler: parse %q: %w", spec, err)
	}
	return s.add(scheduleDef{name: name, spec: spec, timeout: timeout, job: job})
}

// AddSchedule accepts any form ParseSchedule understands.
func (s *Service) AddSchedule(name, raw string, randomize bool, timeout time.Duration, job Job) (string, error) {
	ps, err := ParseSchedule(raw, randomize)
	if err != nil {
		return "", err
	}
	if ps.Kind == SpecCron {
		return s.AddCron(name, ps.Cron, timeout, job)
	}
	return s.AddDescriptor(name, ps.Descriptor, timeout, job)
}

func (s *Service) add(def scheduleDef) (string, error) {
	def.name = strings.TrimSpace(def.name)
	if def.name == "" {
		return "", fmt.Errorf("scheduler: name required")
	}
	if def.job == nil {
		return "", fmt.Errorf("scheduler: job required")
	}
	def.id = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.defs {
		if d.name == def.name {
			return "", fmt.Errorf("%w: %s", ErrDuplicate, def.name)
		}
	}
	if s.c != nil {
		if err := s.addCronLocked(&def); err != nil {
			return "", err
		}
	}
	s.defs = append(s.defs, def)
	s.log.Info("schedule added", logx.String("name", def.name), logx.String("spec", def.spec), logx.Duration("timeout", def.timeout))
	return def.id, nil
}

// Remove unregisters a recurring schedule or disarms a one-time timer.
// It reports whether anything was removed.
func (s *Service) Remove(name string) bool {
	name = strings.TrimSpace(name)
	removed := false

	s.mu.Lock()
	for i, d := range s.defs {
		if d.name != name {
			continue
		}
		if s.c != nil && d.entryID != 0 {
			s.c.Remove(d.entryID)
		}
		s.defs = append(s.defs[:i], s.defs[i+1:]...)
		removed = true
		break
	}
	s.mu.Unlock()

	s.tmu.Lock()
	if t, ok := s.timers[name]; ok {
		_ = t.Stop()
		delete(s.timers, name)
		s.onceVer[name]++
		removed = true
	}
	s.tmu.Unlock()

	if removed {
		s.log.Info("schedule removed", logx.String("name", name))
	}
	return removed
}

// AddOnce runs job once at the given time. Re-arming the same name replaces
// the pending timer. A time in the past fires immediately.
func (s *Service) AddOnce(name string, at time.Time, timeout time.Duration, job Job) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("scheduler: name required")
	}
	if job == nil {
		return fmt.Errorf("scheduler: job required")
	}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.tmu.Lock()
	defer s.tmu.Unlock()
	if t, ok := s.timers[name]; ok {
		_ = t.Stop()
	}
	s.onceVer[name]++
	ver := s.onceVer[name]
	s.timers[name] = time.AfterFunc(delay, func() {
		s.tmu.Lock()
		if s.onceVer[name] != ver {
			s.tmu.Unlock()
			return
		}
		delete(s.timers, name)
		delete(s.onceVer, name)
		s.tmu.Unlock()

		s.run(name, timeout, job)
	})
	s.log.Debug("one-time schedule armed", logx.String("name", name), logx.Time("at", at))
	return nil
}

// addCronLocked registers def on the running cron. Caller holds s.mu.
func (s *Service) addCronLocked(def *scheduleDef) error {
	name, timeout, job := def.name, def.timeout, def.job
	fn := func() { s.run(name, timeout, job) }
	l := cronLogger{log: s.log}
	wrapped := cron.NewChain(cron.SkipIfStillRunning(l)).Then(cron.FuncJob(fn))

	if def.sched != nil {
		def.entryID = s.c.Schedule(def.sched, wrapped)
		return nil
	}
	id, err := s.c.AddJob(def.spec, wrapped)
	if err != nil {
		return fmt.Errorf("scheduler: add %q: %w", def.name, err)
	}
	def.entryID = id
	return nil
}

func (s *Service) run(name string, timeout time.Duration, job Job) {
	s.mu.Lock()
	parent := s.runCtx
	s.mu.Unlock()

	ctx := parent
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}
	defer cancel()

	runID := uuid.NewString()
	log := s.log.With(logx.String("schedule", name), logx.String("run_id", runID))
	start := time.Now()
	log.Debug("run start")

	defer func() {
		if r := recover(); r != nil {
			s.reportRunError(name, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := job(ctx); err != nil {
		s.reportRunError(name, err)
		return
	}
	log.Debug("run done", logx.Duration("took", time.Since(start)))
}
