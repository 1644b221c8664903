package ven

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadr/internal/eventbus"
	"leadr/internal/metrics"
	logx "leadr/pkg/logx"
	"leadr/pkg/oadr"
	"leadr/pkg/queue"
)

// Fetcher returns the next batch of queue items from the server side.
type Fetcher interface {
	Fetch(ctx context.Context) ([]queue.Item, error)
}

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option    { return func(d *Dispatcher) { d.now = now } }
func WithBus(b eventbus.Bus) Option            { return func(d *Dispatcher) { d.bus = b } }
func WithMetrics(m *metrics.Metrics) Option    { return func(d *Dispatcher) { d.m = m } }
func WithLogger(l logx.Logger) Option          { return func(d *Dispatcher) { d.log = l } }
func WithDefaultRampUp(r time.Duration) Option { return func(d *Dispatcher) { d.rampUp = r } }

// Dispatcher owns the inbound queue and the set of known events.
// All methods are safe for concurrent use.
type Dispatcher struct {
	fetcher Fetcher
	bus     eventbus.Bus
	m       *metrics.Metrics
	log     logx.Logger
	now     func() time.Time

	mu     sync.Mutex
	q      *queue.Queue
	known  map[string]*oadr.Event
	rampUp time.Duration

	// retired remembers the modification number of events forgotten after
	// completing or being cancelled, so re-delivery doesn't revive them.
	retired map[string]int
}

type outcome int

const (
	dispatched outcome = iota
	skipped
	rejected
)

// PollResult summarizes one Poll.
type PollResult struct {
	RunID      string
	Fetched    int
	Dispatched int
	Skipped    int // stale updates and already retired events
	Rejected   int
	Messages   int // non-event items left on the queue
}

func NewDispatcher(f Fetcher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		fetcher: f,
		log:     logx.Nop(),
		now:     time.Now,
		q:       queue.New(),
		known:   map[string]*oadr.Event{},
		retired: map[string]int{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SetDefaultRampUp changes the ramp-up applied to events without their own.
// Already known events keep theirs.
func (d *Dispatcher) SetDefaultRampUp(r time.Duration) {
	d.mu.Lock()
	d.rampUp = r
	d.mu.Unlock()
}

// Enqueue appends items to the inbound queue in order.
func (d *Dispatcher) Enqueue(items ...queue.Item) {
	d.mu.Lock()
	d.q.Push(items...)
	d.observeQueueLocked()
	d.mu.Unlock()
}

// Poll fetches new items, then dispatches every queued event ahead of the
// rest of the queue. Non-event items stay queued in their original order.
func (d *Dispatcher) Poll(ctx context.Context) (PollResult, error) {
	start := time.Now()
	res := PollResult{RunID: uuid.NewString()}
	log := d.log.With(logx.String("run_id", res.RunID))

	var fetchErr error
	if d.fetcher != nil {
		items, err := d.fetcher.Fetch(ctx)
		if err != nil {
			fetchErr = err
			log.Warn("fetch failed", logx.Err(err))
		} else {
			res.Fetched = len(items)
			d.Enqueue(items...)
			if d.m != nil {
				d.m.EventsFetched.Add(float64(countEvents(items)))
			}
		}
	}

	d.mu.Lock()
	for {
		if err := ctx.Err(); err != nil {
			if fetchErr == nil {
				fetchErr = err
			}
			break
		}
		e, ok := d.q.NextEvent()
		if !ok {
			break
		}
		switch d.dispatchLocked(log, e) {
		case dispatched:
			res.Dispatched++
		case skipped:
			res.Skipped++
		default:
			res.Rejected++
		}
	}
	d.refreshLocked()
	res.Messages = d.q.Len()
	d.observeQueueLocked()
	d.mu.Unlock()

	took := time.Since(start)
	d.publish(eventbus.TypePollDone, eventbus.PollDone{
		RunID:      res.RunID,
		Fetched:    res.Fetched,
		Dispatched: res.Dispatched,
		Took:       took,
		Error:      errString(fetchErr),
	})
	if d.m != nil {
		result := "ok"
		if fetchErr != nil {
			result = "error"
		}
		d.m.Polls.WithLabelValues(result).Inc()
		d.m.PollDuration.Observe(took.Seconds())
	}
	log.Debug("poll done",
		logx.Int("fetched", res.Fetched),
		logx.Int("dispatched", res.Dispatched),
		logx.Int("skipped", res.Skipped),
		logx.Int("rejected", res.Rejected),
		logx.Int("messages", res.Messages),
		logx.Duration("took", took),
	)
	return res, fetchErr
}

// dispatchLocked merges e into the known set.
func (d *Dispatcher) dispatchLocked(log logx.Logger, e *oadr.Event) outcome {
	id := e.ID()
	if id == "" {
		log.Warn("event without id dropped")
		return rejected
	}
	log = log.With(logx.String("event_id", id))

	if mod, ok := d.retired[id]; ok {
		if e.Descriptor.ModificationNumber <= mod {
			return skipped
		}
		delete(d.retired, id)
	}
	prev, seen := d.known[id]
	if seen && e.Descriptor.ModificationNumber < prev.Descriptor.ModificationNumber {
		log.Debug("stale event update ignored",
			logx.Int("modification", e.Descriptor.ModificationNumber),
			logx.Int("known", prev.Descriptor.ModificationNumber),
		)
		return skipped
	}

	if e.ActivePeriod.IsZero() {
		p, err := activePeriodFromSignals(e.Signals)
		if err != nil {
			log.Warn("event has no usable active period", logx.Err(err))
			return rejected
		}
		p.RampUp = e.ActivePeriod.RampUp
		e.ActivePeriod = p
	}
	if e.ActivePeriod.RampUp == 0 {
		e.ActivePeriod.RampUp = d.rampUp
	}

	from := oadr.StatusNone
	if seen {
		from = prev.Descriptor.Status
	}
	if e.Descriptor.Status != oadr.StatusCancelled {
		e.Descriptor.Status = oadr.DetermineStatus(e.ActivePeriod, d.now())
	}
	d.known[id] = e
	if d.m != nil {
		d.m.EventsDispatched.Inc()
	}
	d.transitionLocked(id, from, e.Descriptor.Status)
	return dispatched
}

// activePeriodFromSignals derives the period from the first signal that
// carries intervals. Gaps between intervals are rejected.
func activePeriodFromSignals(signals []oadr.Signal) (oadr.ActivePeriod, error) {
	for _, s := range signals {
		if len(s.Intervals) == 0 {
			continue
		}
		if err := oadr.ValidateContiguous(s.Intervals); err != nil {
			return oadr.ActivePeriod{}, err
		}
		return oadr.ActivePeriodFromIntervals(s.Intervals)
	}
	return oadr.ActivePeriod{}, oadr.ErrNoIntervals
}

// Refresh re-evaluates every known event against the clock.
func (d *Dispatcher) Refresh() {
	d.mu.Lock()
	d.refreshLocked()
	d.mu.Unlock()
}

// refreshLocked publishes status changes and forgets completed and
// cancelled events once they have been reported.
func (d *Dispatcher) refreshLocked() {
	now := d.now()
	for id, e := range d.known {
		st := e.Descriptor.Status
		if st != oadr.StatusCancelled {
			next := oadr.DetermineStatus(e.ActivePeriod, now)
			if next != st {
				e.Descriptor.Status = next
				d.transitionLocked(id, st, next)
				st = next
			}
		}
		if st == oadr.StatusCompleted || st == oadr.StatusCancelled {
			d.retired[id] = e.Descriptor.ModificationNumber
			delete(d.known, id)
		}
	}
}

func (d *Dispatcher) transitionLocked(id string, from, to oadr.Status) {
	if from == to {
		return
	}
	d.log.Info("event status changed",
		logx.String("event_id", id),
		logx.String("from", from.String()),
		logx.String("to", to.String()),
	)
	if d.m != nil {
		d.m.StatusChanges.WithLabelValues(to.String()).Inc()
	}
	d.publish(eventbus.TypeEventStatus, eventbus.StatusChange{EventID: id, From: from.String(), To: to.String()})
}

// Events refreshes every known event (publishing any transitions, like
// Refresh) and returns copies, active first (see oadr.OrderEvents).
func (d *Dispatcher) Events() []*oadr.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshLocked()
	list := make([]*oadr.Event, 0, len(d.known))
	for _, e := range d.known {
		c := *e
		list = append(list, &c)
	}
	return oadr.OrderEvents(list, d.now())
}

// NextTransition returns the earliest future ramp-up, start or end
// boundary among known events.
func (d *Dispatcher) NextTransition() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	var next time.Time
	consider := func(t time.Time) {
		if t.After(now) && (next.IsZero() || t.Before(next)) {
			next = t
		}
	}
	for _, e := range d.known {
		if e.Descriptor.Status == oadr.StatusCancelled {
			continue
		}
		p := e.ActivePeriod
		if p.RampUp > 0 {
			consider(p.Start.Add(-p.RampUp))
		}
		consider(p.Start)
		consider(p.End())
	}
	return next, !next.IsZero()
}

// TakeMessages removes and returns the non-event items left on the queue.
// Event items that arrived meanwhile stay queued.
func (d *Dispatcher) TakeMessages() []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []any
	var keep []queue.Item
	for {
		it, ok := d.q.PopFront()
		if !ok {
			break
		}
		if it.IsEvent() {
			keep = append(keep, it)
			continue
		}
		out = append(out, it.Message)
	}
	d.q.Push(keep...)
	d.observeQueueLocked()
	return out
}

// QueueLen returns the total number of queued items and how many are events.
func (d *Dispatcher) QueueLen() (items, events int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.q.Len(), d.q.EventCount()
}

func (d *Dispatcher) observeQueueLocked() {
	d.m.ObserveQueue(d.q.Len(), d.q.EventCount())
}

func (d *Dispatcher) publish(typ string, data any) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(eventbus.Event{Type: typ, Data: data})
}

func countEvents(items []queue.Item) int {
	n := 0
	for _, it := range items {
		if it.IsEvent() {
			n++
		}
	}
	return n
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
