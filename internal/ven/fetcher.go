package ven

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"leadr/pkg/isotime"
	"leadr/pkg/oadr"
	"leadr/pkg/queue"
)

// FileFetcher reads queue items from a YAML (or JSON) fixture on every
// Fetch. It stands in for the network transport.
//
//	items:
//	  - event:
//	      event_id: ev-1
//	      modification_number: 0
//	      priority: 1
//	      ramp_up: PT5M
//	      signals:
//	        - name: SIMPLE
//	          intervals:
//	            - { dtstart: "2026-10-18T12:00:00Z", duration: PT1H, payload: 1 }
//	  - message: { type: oadrRegisterReport }
//
// Times are ISO-8601 date-times with a Z suffix; durations are ISO-8601.
type FileFetcher struct {
	mu   sync.RWMutex
	path string
}

func NewFileFetcher(path string) *FileFetcher { return &FileFetcher{path: path} }

func (f *FileFetcher) Path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path
}

// SetPath points later fetches at another fixture.
func (f *FileFetcher) SetPath(path string) {
	f.mu.Lock()
	f.path = path
	f.mu.Unlock()
}

type fixture struct {
	Items []fixtureItem `yaml:"items"`
}

type fixtureItem struct {
	Event   *fixtureEvent `yaml:"event"`
	Message any           `yaml:"message"`
}

type fixtureEvent struct {
	EventID            string          `yaml:"event_id"`
	ModificationNumber int             `yaml:"modification_number"`
	MarketContext      string          `yaml:"market_context"`
	CreatedAt          string          `yaml:"created_date_time"`
	Status             string          `yaml:"event_status"`
	TestEvent          bool            `yaml:"test_event"`
	Priority           int             `yaml:"priority"`
	DTStart            string          `yaml:"dtstart"`
	Duration           string          `yaml:"duration"`
	RampUp             string          `yaml:"ramp_up"`
	Signals            []fixtureSignal `yaml:"signals"`
	Targets            []fixtureTarget `yaml:"targets"`
}

type fixtureSignal struct {
	Name      string            `yaml:"name"`
	Type      string            `yaml:"type"`
	ID        string            `yaml:"id"`
	Intervals []fixtureInterval `yaml:"intervals"`
}

type fixtureInterval struct {
	DTStart  string `yaml:"dtstart"`
	Duration string `yaml:"duration"`
	Payload  any    `yaml:"payload"`
}

type fixtureTarget struct {
	GroupID    string `yaml:"group_id"`
	ResourceID string `yaml:"resource_id"`
	VenID      string `yaml:"ven_id"`
	PartyID    string `yaml:"party_id"`
}

func (f *FileFetcher) Fetch(ctx context.Context) ([]queue.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(path, b)
}

// ParseFixture decodes a fixture document. name is used in error messages.
func ParseFixture(name string, b []byte) ([]queue.Item, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var fx fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	out := make([]queue.Item, 0, len(fx.Items))
	for i, it := range fx.Items {
		switch {
		case it.Event != nil && it.Message != nil:
			return nil, fmt.Errorf("%s: items[%d]: event and message are exclusive", name, i)
		case it.Event != nil:
			e, err := it.Event.toEvent()
			if err != nil {
				return nil, fmt.Errorf("%s: items[%d]: %w", name, i, err)
			}
			out = append(out, queue.EventItem(e))
		case it.Message != nil:
			out = append(out, queue.MessageItem(it.Message))
		default:
			return nil, fmt.Errorf("%s: items[%d]: empty item", name, i)
		}
	}
	return out, nil
}

func (fe *fixtureEvent) toEvent() (*oadr.Event, error) {
	if strings.TrimSpace(fe.EventID) == "" {
		return nil, fmt.Errorf("event_id required")
	}
	e := &oadr.Event{
		Descriptor: oadr.EventDescriptor{
			EventID:            fe.EventID,
			ModificationNumber: fe.ModificationNumber,
			MarketContext:      fe.MarketContext,
			Status:             oadr.Status(strings.ToLower(strings.TrimSpace(fe.Status))),
			TestEvent:          fe.TestEvent,
			Priority:           fe.Priority,
		},
	}
	if e.Descriptor.Status == "" {
		e.Descriptor.Status = oadr.StatusNone
	}

	var err error
	if e.Descriptor.CreatedAt, err = optTime("created_date_time", fe.CreatedAt); err != nil {
		return nil, err
	}
	if e.ActivePeriod.Start, err = optTime("dtstart", fe.DTStart); err != nil {
		return nil, err
	}
	if e.ActivePeriod.Duration, err = optDuration("duration", fe.Duration); err != nil {
		return nil, err
	}
	if e.ActivePeriod.RampUp, err = optDuration("ramp_up", fe.RampUp); err != nil {
		return nil, err
	}

	for si, s := range fe.Signals {
		sig := oadr.Signal{Name: s.Name, Type: s.Type, ID: s.ID}
		for ii, iv := range s.Intervals {
			field := fmt.Sprintf("signals[%d].intervals[%d]", si, ii)
			start, err := optTime(field+".dtstart", iv.DTStart)
			if err != nil {
				return nil, err
			}
			dur, err := optDuration(field+".duration", iv.Duration)
			if err != nil {
				return nil, err
			}
			sig.Intervals = append(sig.Intervals, oadr.Interval{Start: start, Duration: dur, Payload: iv.Payload})
		}
		e.Signals = append(e.Signals, sig)
	}
	for _, t := range fe.Targets {
		e.Targets = append(e.Targets, oadr.Target{GroupID: t.GroupID, ResourceID: t.ResourceID, VenID: t.VenID, PartyID: t.PartyID})
	}
	return e, nil
}

func optTime(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := isotime.ParseDateTime(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func optDuration(field, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := isotime.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
