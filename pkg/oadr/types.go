package oadr

import "time"

// Interval is one scheduled sub-period of an event signal.
type Interval struct {
	Start    time.Time
	Duration time.Duration
	Payload  any
}

// End returns Start + Duration.
func (i Interval) End() time.Time { return i.Start.Add(i.Duration) }

// ActivePeriod is the window during which an event is in effect.
//
// RampUp is optional lead time before Start; zero means no ramp-up.
type ActivePeriod struct {
	Start    time.Time
	Duration time.Duration
	RampUp   time.Duration
}

// End returns Start + Duration.
func (p ActivePeriod) End() time.Time { return p.Start.Add(p.Duration) }

// IsZero reports whether p has no start time.
func (p ActivePeriod) IsZero() bool { return p.Start.IsZero() && p.Duration == 0 }

// Signal is a named series of intervals inside an event.
type Signal struct {
	Name      string
	Type      string
	ID        string
	Intervals []Interval
}

// EventDescriptor carries the event identity and bookkeeping fields.
type EventDescriptor struct {
	EventID            string
	ModificationNumber int
	MarketContext      string
	CreatedAt          time.Time
	Status             Status
	TestEvent          bool

	// Priority 0 is the lowest priority; 1 is the highest.
	Priority int
}

// Event is a demand-response event as delivered by the server.
type Event struct {
	Descriptor   EventDescriptor
	ActivePeriod ActivePeriod
	Signals      []Signal
	Targets      []Target
}

// ID returns the event identifier.
func (e *Event) ID() string {
	if e == nil {
		return ""
	}
	return e.Descriptor.EventID
}
