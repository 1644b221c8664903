package isotime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	t.Parallel()
	base := time.Date(2020, 12, 15, 14, 10, 34, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2020-12-15T14:10:34Z", base},
		{"2020-12-15T14:10:34.1Z", base.Add(100 * time.Millisecond)},
		{"2020-12-15T14:10:34.123Z", base.Add(123 * time.Millisecond)},
		{"2020-12-15T14:10:34.123456Z", base.Add(123456 * time.Microsecond)},
		{"2020-12-15T14:10:34.123456789Z", base.Add(123456 * time.Microsecond)},
		{"2020-12-15T14:10:34.999999999Z", base.Add(999999 * time.Microsecond)},
	}
	for _, tt := range tests {
		got, err := ParseDateTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}
}

func TestParseDateTimeTruncatesFraction(t *testing.T) {
	t.Parallel()
	got, err := ParseDateTime("2020-12-15T14:10:34.123456789Z")
	require.NoError(t, err)
	assert.Equal(t, 123456, got.Nanosecond()/1000)
	assert.Equal(t, 0, got.Nanosecond()%1000)
}

func TestParseDateTimeInvalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"",
		"2020-12-15T14:10:34",
		"2020-12-15T14:10:34+01:00",
		"2020-12-15 14:10:34Z",
		"2020-13-15T14:10:34Z",
		"2020-02-30T14:10:34Z",
		"2020-12-15T14:10:34.Z",
		"2020-12-15T14:10:34.1234567890Z",
	} {
		_, err := ParseDateTime(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrFormat))
		assert.Contains(t, err.Error(), in)
	}
}

func TestFormatDateTime(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2021, 1, 2, 4, 5, 6, 123456789, loc)
	assert.Equal(t, "2021-01-02T03:05:06.123456Z", FormatDateTime(in))

	back, err := ParseDateTime(FormatDateTime(in))
	require.NoError(t, err)
	assert.True(t, in.Truncate(time.Microsecond).Equal(back))
}
