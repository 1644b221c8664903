package cronspec

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		period    time.Duration
		randomize bool
		want      Descriptor
	}{
		{"seconds", 10 * time.Second, false, Descriptor{Second: "*/10", Minute: "*", Hour: "*"}},
		{"seconds jitter", 10 * time.Second, true, Descriptor{Second: "*/10", Minute: "*", Hour: "*", Jitter: 1}},
		{"minutes", 5 * time.Minute, false, Descriptor{Second: "0", Minute: "*/5", Hour: "*"}},
		{"minutes randomize", 5 * time.Minute, true, Descriptor{Second: "0", Minute: "*/5", Hour: "*"}},
		{"hours", 2 * time.Hour, false, Descriptor{Second: "0", Minute: "0", Hour: "*/2"}},
		{"one minute", time.Minute, false, Descriptor{Second: "0", Minute: "*/1", Hour: "*"}},
		{"one hour", time.Hour, false, Descriptor{Second: "0", Minute: "0", Hour: "*/1"}},
		{"one day", 24 * time.Hour, false, Descriptor{Second: "0", Minute: "0", Hour: "0"}},
		{"25 hours", 25 * time.Hour, false, Descriptor{Second: "0", Minute: "0", Hour: "0"}},
		{"uneven truncates", 90 * time.Second, false, Descriptor{Second: "0", Minute: "*/1", Hour: "*"}},
		{"sub second", 500 * time.Millisecond, false, Descriptor{Second: "*/1", Minute: "*", Hour: "*"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Config(tt.period, tt.randomize)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigStepMatchesPeriod(t *testing.T) {
	t.Parallel()
	for s := 1; s < 60; s++ {
		d, err := Config(time.Duration(s)*time.Second, false)
		require.NoError(t, err)
		assert.Equal(t, "*/"+strconv.Itoa(s), d.Second)
	}
	for m := 1; m < 60; m++ {
		d, err := Config(time.Duration(m)*time.Minute, false)
		require.NoError(t, err)
		assert.Equal(t, "*/"+strconv.Itoa(m), d.Minute)
	}
}

func TestConfigInvalid(t *testing.T) {
	t.Parallel()
	_, err := Config(0, false)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = Config(-time.Second, true)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestDescriptorMapAndSpec(t *testing.T) {
	t.Parallel()
	d := Descriptor{Second: "*/10", Minute: "*", Hour: "*", Jitter: 1}
	assert.Equal(t, map[string]string{"second": "*/10", "minute": "*", "hour": "*", "jitter": "1"}, d.Map())
	assert.Equal(t, "*/10 * * * * *", d.Spec())

	d.Jitter = 0
	_, ok := d.Map()["jitter"]
	assert.False(t, ok)
}

func TestDescriptorSchedule(t *testing.T) {
	t.Parallel()
	start := time.Date(2021, 6, 1, 12, 0, 1, 0, time.UTC)

	d, err := Config(15*time.Minute, false)
	require.NoError(t, err)
	sched, err := d.Schedule()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 6, 1, 12, 15, 0, 0, time.UTC), sched.Next(start))

	d, err = Config(48*time.Hour, false)
	require.NoError(t, err)
	sched, err = d.Schedule()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 6, 2, 0, 0, 0, 0, time.UTC), sched.Next(start))
}

func TestJitterSchedule(t *testing.T) {
	t.Parallel()
	base, err := Parser.Parse("*/10 * * * * *")
	require.NoError(t, err)
	s := NewJitterSchedule(base, time.Second, rand.New(rand.NewSource(1)))

	start := time.Date(2021, 6, 1, 12, 0, 1, 0, time.UTC)
	want := time.Date(2021, 6, 1, 12, 0, 10, 0, time.UTC)
	for i := 0; i < 50; i++ {
		next := s.Next(start)
		assert.False(t, next.Before(want))
		assert.True(t, next.Before(want.Add(time.Second)))
	}
}
