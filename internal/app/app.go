package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadr/internal/config"
	"leadr/internal/eventbus"
	"leadr/internal/metrics"
	"leadr/internal/runtime/supervisor"
	"leadr/internal/task/scheduler"
	"leadr/internal/ven"
	logx "leadr/pkg/logx"
)

const (
	pollSchedule       = "ven.poll"
	initialPollName    = "ven.poll.initial"
	transitionSchedule = "ven.transition"
)

// App wires the VEN daemon: config, logging, the poll schedule, the event
// dispatcher and the optional metrics endpoint.
type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus
	mets *metrics.Metrics

	sched   *scheduler.Service
	disp    *ven.Dispatcher
	fetcher *ven.FileFetcher

	metricsSrv *metrics.Server
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	rampUp, err := mapRampUp(cfg)
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()
	mets := metrics.New()
	fetcher := ven.NewFileFetcher(cfg.Events.File)
	disp := ven.NewDispatcher(fetcher,
		ven.WithBus(bus),
		ven.WithMetrics(mets),
		ven.WithLogger(log.With(logx.String("comp", "ven"))),
		ven.WithDefaultRampUp(rampUp),
	)
	schedSvc := scheduler.New(mapSchedulerConfig(cfg), log.With(logx.String("comp", "scheduler")))

	a := &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		mets:    mets,
		sched:   schedSvc,
		disp:    disp,
		fetcher: fetcher,
	}
	if err := a.registerPoll(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Dispatcher exposes the event side, mainly for tests and embedding.
func (a *App) Dispatcher() *ven.Dispatcher { return a.disp }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return config.Validate(cfg)
	})

	if addr, path, pprof, ok := mapMetricsConfig(a.cfgm.Get()); ok {
		srv, err := metrics.Listen(addr, path, a.mets, a.log.With(logx.String("comp", "metrics")), pprof)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		a.metricsSrv = srv
		a.sup.Go("metrics.http", func(context.Context) error { return srv.Serve() })
	}

	if a.sched.Enabled() {
		a.sched.Start(a.sup.Context())
		a.pollSoon()
	} else {
		a.log.Warn("scheduler disabled; no polls will run")
	}

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				// Status changes are already logged by the dispatcher.
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time), logx.Any("data", e.Data))
			}
		}
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config in the channel.
			drain:
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						break drain
					}
				}
				a.applyConfig(c, lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.GoRestart("config.watch", time.Second, 30*time.Second, func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started", logx.String("config", a.cfgPath))
	return nil
}

func (a *App) applyConfig(ctx context.Context, oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.Apply(mapLogConfig(newCfg))

	prevEnabled := a.sched.Enabled()
	a.sched.Apply(mapSchedulerConfig(newCfg))

	if config.PollChanged(oldCfg, newCfg) {
		if err := a.registerPoll(newCfg); err != nil {
			a.log.Warn("invalid poll config; keeping previous", logx.Err(err))
		}
	}

	a.fetcher.SetPath(newCfg.Events.File)
	if rampUp, err := mapRampUp(newCfg); err != nil {
		a.log.Warn("invalid events config; keeping previous ramp-up", logx.Err(err))
	} else {
		a.disp.SetDefaultRampUp(rampUp)
	}

	for _, s := range sections {
		if s == "metrics" {
			a.log.Warn("metrics config changed; restart required for changes to take effect")
		}
	}

	switch enabled := newCfg.Scheduler.Enabled; {
	case prevEnabled && !enabled:
		a.log.Info("scheduler disabled via config")
		stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		a.sched.Stop(stopCtx)
		cancel()
	case !prevEnabled && enabled:
		a.log.Info("scheduler enabled via config")
		a.sched.Start(ctx)
		a.pollSoon()
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

// registerPoll (re)binds the recurring poll to the configured interval.
func (a *App) registerPoll(cfg *config.Config) error {
	plan, err := mapPollConfig(cfg)
	if err != nil {
		return err
	}
	if _, err := a.sched.ReplaceDescriptor(pollSchedule, plan.Descriptor, plan.Timeout, a.poll); err != nil {
		return err
	}
	a.log.Info("poll scheduled",
		logx.String("every", plan.Every.String()),
		logx.String("cron", plan.Descriptor.Spec()),
		logx.Int("jitter", plan.Descriptor.Jitter),
	)
	return nil
}

// pollSoon runs one poll right away instead of waiting for the first tick.
func (a *App) pollSoon() {
	var timeout time.Duration
	if plan, err := mapPollConfig(a.cfgm.Get()); err == nil {
		timeout = plan.Timeout
	}
	if err := a.sched.AddOnce(initialPollName, time.Now(), timeout, a.poll); err != nil {
		a.log.Warn("initial poll not armed", logx.Err(err))
	}
}

func (a *App) poll(ctx context.Context) error {
	_, err := a.disp.Poll(ctx)
	for _, m := range a.disp.TakeMessages() {
		a.log.Debug("message received", logx.Any("message", m))
	}
	a.armTransition()
	return err
}

// armTransition schedules a status refresh at the next ramp-up, start or
// end boundary so transitions don't wait for the next poll.
func (a *App) armTransition() {
	at, ok := a.disp.NextTransition()
	if !ok {
		a.sched.Remove(transitionSchedule)
		return
	}
	err := a.sched.AddOnce(transitionSchedule, at, 0, func(context.Context) error {
		a.disp.Refresh()
		a.armTransition()
		return nil
	})
	if err != nil {
		a.log.Warn("transition refresh not armed", logx.Err(err))
	}
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// Cancel the run context first so background loops start unwinding.
	a.sup.Cancel()

	a.step(ctx, "scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	a.step(ctx, "metrics", time.Second, func(c context.Context) error {
		if a.metricsSrv != nil {
			return a.metricsSrv.Shutdown(c)
		}
		return nil
	})
	a.step(ctx, "supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

// step runs one shutdown step bounded by max, never beyond ctx's deadline.
func (a *App) step(ctx context.Context, name string, max time.Duration, fn func(context.Context) error) {
	start := time.Now()
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem < max {
			max = rem
		}
	}
	if max <= 0 {
		a.log.Warn("stop step skipped: deadline reached", logx.String("name", name))
		return
	}
	stepCtx, cancel := context.WithTimeout(ctx, max)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic in stop step %s: %v", name, r)
			}
		}()
		done <- fn(stepCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
	case <-stepCtx.Done():
		a.log.Warn("stop step deadline reached (continuing)",
			logx.String("name", name),
			logx.Duration("elapsed", time.Since(start)),
		)
	}
}
