package oadr

import "time"

// ActivePeriodFromIntervals collapses an ordered run of contiguous
// intervals into one active period: the first start and the summed
// durations. Contiguity is the caller's contract; see ValidateContiguous.
func ActivePeriodFromIntervals(intervals []Interval) (ActivePeriod, error) {
	if len(intervals) == 0 {
		return ActivePeriod{}, ErrNoIntervals
	}
	var total time.Duration
	for _, iv := range intervals {
		total += iv.Duration
	}
	return ActivePeriod{Start: intervals[0].Start, Duration: total}, nil
}

// ActivePeriodMapFromIntervals is ActivePeriodFromIntervals returning the
// mapping form {"dtstart": time.Time, "duration": time.Duration}.
func ActivePeriodMapFromIntervals(intervals []Interval) (map[string]any, error) {
	p, err := ActivePeriodFromIntervals(intervals)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}

// Map returns the mapping form of p. RampUp is included only when set.
func (p ActivePeriod) Map() map[string]any {
	m := map[string]any{
		"dtstart":  p.Start,
		"duration": p.Duration,
	}
	if p.RampUp > 0 {
		m["ramp_up_duration"] = p.RampUp
	}
	return m
}

// ValidateContiguous checks that every interval ends exactly where the
// next one starts.
func ValidateContiguous(intervals []Interval) error {
	if len(intervals) == 0 {
		return ErrNoIntervals
	}
	for i := 0; i+1 < len(intervals); i++ {
		end := intervals[i].End()
		next := intervals[i+1].Start
		if !end.Equal(next) {
			return &GapError{Index: i, End: end, NextStart: next}
		}
	}
	return nil
}
