package oadr

import "time"

// Status is the lifecycle phase of an event.
type Status string

const (
	StatusNone      Status = "none"
	StatusFar       Status = "far"
	StatusNear      Status = "near"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Rank orders the time-derived phases: far < near < active < completed.
// Statuses not produced by DetermineStatus rank -1.
func (s Status) Rank() int {
	switch s {
	case StatusFar:
		return 0
	case StatusNear:
		return 1
	case StatusActive:
		return 2
	case StatusCompleted:
		return 3
	default:
		return -1
	}
}

func (s Status) String() string { return string(s) }

// DetermineStatus classifies p relative to now.
//
// The first matching rule wins:
//   - completed: now >= end
//   - active:    start <= now < end
//   - near:      p.RampUp > 0 and start-rampUp <= now < start
//   - far:       otherwise
func DetermineStatus(p ActivePeriod, now time.Time) Status {
	end := p.End()
	if !now.Before(end) {
		return StatusCompleted
	}
	if !now.Before(p.Start) {
		return StatusActive
	}
	if p.RampUp > 0 && !now.Before(p.Start.Add(-p.RampUp)) {
		return StatusNear
	}
	return StatusFar
}
