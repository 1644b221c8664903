package oadr

import (
	"math"
	"sort"
	"time"
)

// OrderEvents refreshes each event's status against now and returns a new
// slice with active events first, followed by all others. Within each group
// events are sorted by start time; active events starting together are
// ordered by priority.
//
// Cancelled events keep their status.
func OrderEvents(events []*Event, now time.Time) []*Event {
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.Descriptor.Status != StatusCancelled {
			e.Descriptor.Status = DetermineStatus(e.ActivePeriod, now)
		}
		out = append(out, e)
	}
	if len(out) < 2 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		aActive := a.Descriptor.Status == StatusActive
		bActive := b.Descriptor.Status == StatusActive
		if aActive != bActive {
			return aActive
		}
		if !a.ActivePeriod.Start.Equal(b.ActivePeriod.Start) {
			return a.ActivePeriod.Start.Before(b.ActivePeriod.Start)
		}
		if aActive {
			return priorityKey(a) < priorityKey(b)
		}
		return false
	})
	return out
}

// priorityKey maps the wire priority to a sortable key: 1 is most urgent,
// 0 means "unspecified / lowest".
func priorityKey(e *Event) int {
	if e.Descriptor.Priority <= 0 {
		return math.MaxInt
	}
	return e.Descriptor.Priority
}

// IncrementModificationNumber bumps the descriptor's modification number
// and returns the new value.
func IncrementModificationNumber(e *Event) int {
	e.Descriptor.ModificationNumber++
	return e.Descriptor.ModificationNumber
}
