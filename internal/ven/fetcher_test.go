package ven

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadr/pkg/isotime"
	"leadr/pkg/oadr"
)

const sampleFixture = `
items:
  - message: { type: oadrPoll }
  - event:
      event_id: ev-1
      modification_number: 2
      market_context: http://mc.example
      created_date_time: "2026-10-18T11:00:00Z"
      priority: 1
      ramp_up: PT5M
      signals:
        - name: SIMPLE
          type: level
          id: sig-1
          intervals:
            - { dtstart: "2026-10-18T13:00:00Z", duration: PT30M, payload: 1 }
            - { dtstart: "2026-10-18T13:30:00Z", duration: PT30M, payload: 2 }
      targets:
        - ven_id: ven-123
  - event:
      event_id: ev-2
      event_status: Cancelled
      dtstart: "2026-10-18T12:00:00.5Z"
      duration: PT1H
`

func TestParseFixture(t *testing.T) {
	t.Parallel()

	items, err := ParseFixture("sample.yaml", []byte(sampleFixture))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.False(t, items[0].IsEvent())
	assert.Equal(t, map[string]any{"type": "oadrPoll"}, items[0].Message)

	require.True(t, items[1].IsEvent())
	e := items[1].Event
	assert.Equal(t, "ev-1", e.ID())
	assert.Equal(t, 2, e.Descriptor.ModificationNumber)
	assert.Equal(t, "http://mc.example", e.Descriptor.MarketContext)
	assert.Equal(t, time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC), e.Descriptor.CreatedAt)
	assert.Equal(t, oadr.StatusNone, e.Descriptor.Status)
	assert.True(t, e.ActivePeriod.IsZero())
	assert.Equal(t, 5*time.Minute, e.ActivePeriod.RampUp)
	require.Len(t, e.Signals, 1)
	require.Len(t, e.Signals[0].Intervals, 2)
	assert.Equal(t, 30*time.Minute, e.Signals[0].Intervals[1].Duration)
	assert.Equal(t, 2, e.Signals[0].Intervals[1].Payload)
	assert.Equal(t, []oadr.Target{{VenID: "ven-123"}}, e.Targets)

	e2 := items[2].Event
	assert.Equal(t, oadr.StatusCancelled, e2.Descriptor.Status)
	assert.Equal(t, "2026-10-18T12:00:00.500000Z", isotime.FormatDateTime(e2.ActivePeriod.Start))
	assert.Equal(t, time.Hour, e2.ActivePeriod.Duration)
}

func TestParseFixtureErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown field": "items:\n  - event: { event_id: x, colour: red }\n",
		"empty item":    "items:\n  - {}\n",
		"both":          "items:\n  - { event: { event_id: x }, message: hi }\n",
		"no id":         "items:\n  - event: { priority: 1 }\n",
		"bad time":      "items:\n  - event: { event_id: x, dtstart: '2026-10-18 12:00' }\n",
		"bad duration":  "items:\n  - event: { event_id: x, duration: 1h }\n",
	}
	for name, doc := range tests {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseFixture("f.yaml", []byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseFixtureEmpty(t *testing.T) {
	t.Parallel()

	items, err := ParseFixture("f.yaml", []byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileFetcher(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixture), 0o644))

	f := NewFileFetcher(path)
	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)

	f.SetPath(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFileFetcherFeedsDispatcher(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixture), 0o644))

	now := time.Date(2026, 10, 18, 12, 56, 0, 0, time.UTC)
	d := NewDispatcher(NewFileFetcher(path), WithClock(func() time.Time { return now }))
	res, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dispatched)
	assert.Equal(t, 1, res.Messages)

	evs := d.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, "ev-1", evs[0].ID())
	assert.Equal(t, oadr.StatusNear, evs[0].Descriptor.Status)
}
