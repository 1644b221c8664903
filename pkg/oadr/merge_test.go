package oadr

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivePeriodFromIntervals(t *testing.T) {
	t.Parallel()
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	intervals := []Interval{
		{Start: now, Duration: 5 * time.Second, Payload: 1},
		{Start: now.Add(5 * time.Second), Duration: 5 * time.Second, Payload: 2},
	}

	p, err := ActivePeriodFromIntervals(intervals)
	require.NoError(t, err)
	assert.Equal(t, ActivePeriod{Start: now, Duration: 10 * time.Second}, p)

	m, err := ActivePeriodMapFromIntervals(intervals)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dtstart": now, "duration": 10 * time.Second}, m)
}

func TestActivePeriodFromIntervalsEmpty(t *testing.T) {
	t.Parallel()
	_, err := ActivePeriodFromIntervals(nil)
	assert.ErrorIs(t, err, ErrNoIntervals)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ActivePeriodMapFromIntervals([]Interval{})
	assert.ErrorIs(t, err, ErrNoIntervals)
}

func TestValidateContiguous(t *testing.T) {
	t.Parallel()
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	ok := []Interval{
		{Start: now, Duration: time.Minute},
		{Start: now.Add(time.Minute), Duration: time.Minute},
		{Start: now.Add(2 * time.Minute), Duration: 30 * time.Second},
	}
	require.NoError(t, ValidateContiguous(ok))

	gap := []Interval{
		{Start: now, Duration: time.Minute},
		{Start: now.Add(2 * time.Minute), Duration: time.Minute},
	}
	err := ValidateContiguous(gap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var ge *GapError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 0, ge.Index)
	assert.True(t, ge.End.Equal(now.Add(time.Minute)))

	assert.ErrorIs(t, ValidateContiguous(nil), ErrNoIntervals)
}

func TestActivePeriodMapIncludesRampUp(t *testing.T) {
	t.Parallel()
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	m := ActivePeriod{Start: now, Duration: time.Hour, RampUp: time.Minute}.Map()
	assert.Equal(t, time.Minute, m["ramp_up_duration"])
}
