// Package cronspec turns a polling period into a recurrence descriptor
// (second/minute/hour fields plus optional jitter) and renders it for
// robfig/cron.
package cronspec

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidPeriod = errors.New("cronspec: period must be > 0")

// Descriptor is a cron-like trigger description. Jitter is in seconds;
// zero means no jitter.
type Descriptor struct {
	Second string
	Minute string
	Hour   string
	Jitter int
}

// Config maps a polling period onto the smallest unit that describes it.
//
//   - period < 1m:  {"*/S", "*", "*"}
//   - period < 1h:  {"0", "*/M", "*"}
//   - period < 24h: {"0", "0", "*/H"}
//   - otherwise:    {"0", "0", "0"} (once a day)
//
// Periods that are not a whole number of the chosen unit are truncated to
// it (90s becomes every minute); a step that truncates to zero becomes 1.
// randomize adds Jitter=1 when the chosen unit is seconds.
func Config(period time.Duration, randomize bool) (Descriptor, error) {
	if period <= 0 {
		return Descriptor{}, ErrInvalidPeriod
	}
	var d Descriptor
	switch {
	case period < time.Minute:
		d = Descriptor{Second: every(period / time.Second), Minute: "*", Hour: "*"}
		if randomize {
			d.Jitter = 1
		}
	case period < time.Hour:
		d = Descriptor{Second: "0", Minute: every(period / time.Minute), Hour: "*"}
	case period < 24*time.Hour:
		d = Descriptor{Second: "0", Minute: "0", Hour: every(period / time.Hour)}
	default:
		d = Descriptor{Second: "0", Minute: "0", Hour: "0"}
	}
	return d, nil
}

func every(n time.Duration) string {
	if n < 1 {
		n = 1
	}
	return "*/" + strconv.FormatInt(int64(n), 10)
}

// Map returns the descriptor under its stable field names. "jitter" is
// present only when set.
func (d Descriptor) Map() map[string]string {
	m := map[string]string{
		"second": d.Second,
		"minute": d.Minute,
		"hour":   d.Hour,
	}
	if d.Jitter > 0 {
		m["jitter"] = strconv.Itoa(d.Jitter)
	}
	return m
}

// Spec renders d as a 6-field cron expression (seconds first).
func (d Descriptor) Spec() string {
	return d.Second + " " + d.Minute + " " + d.Hour + " * * *"
}

// Parser accepts the expressions produced by Spec.
var Parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule parses Spec and, when Jitter is set, wraps the result so each
// activation is delayed by a random amount in [0, Jitter) seconds.
func (d Descriptor) Schedule() (cron.Schedule, error) {
	base, err := Parser.Parse(d.Spec())
	if err != nil {
		return nil, err
	}
	if d.Jitter <= 0 {
		return base, nil
	}
	return NewJitterSchedule(base, time.Duration(d.Jitter)*time.Second, rand.New(rand.NewSource(time.Now().UnixNano()))), nil
}

// JitterSchedule delays every activation of a base schedule by a random
// offset below Max. Activations never move before the base time.
type JitterSchedule struct {
	Base cron.Schedule
	Max  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewJitterSchedule(base cron.Schedule, max time.Duration, rng *rand.Rand) *JitterSchedule {
	return &JitterSchedule{Base: base, Max: max, rng: rng}
}

func (s *JitterSchedule) Next(t time.Time) time.Time {
	next := s.Base.Next(t)
	if next.IsZero() || s.Max <= 0 {
		return next
	}
	s.mu.Lock()
	off := time.Duration(s.rng.Int63n(int64(s.Max)))
	s.mu.Unlock()
	return next.Add(off)
}
