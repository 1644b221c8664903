package isotime

import (
	"regexp"
	"strings"
	"time"
)

const (
	layoutSeconds = "2006-01-02T15:04:05"

	// Layout is the wire representation produced by FormatDateTime.
	Layout = "2006-01-02T15:04:05.000000Z"
)

var reDateTime = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})(?:\.(\d{1,9}))?Z$`)

// ParseDateTime parses a UTC timestamp like "2020-12-15T14:10:34Z" or
// "2020-12-15T14:10:34.123456789Z".
//
// Fractional digits beyond the sixth are dropped, never rounded; shorter
// fractions are right-padded with zeros.
func ParseDateTime(text string) (time.Time, error) {
	m := reDateTime.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, datetimeError(text)
	}
	t, err := time.ParseInLocation(layoutSeconds, m[1], time.UTC)
	if err != nil {
		return time.Time{}, datetimeError(text)
	}
	if m[2] != "" {
		t = t.Add(fractionMicros(m[2]))
	}
	return t, nil
}

// FormatDateTime renders t in UTC with microsecond precision and a "Z" suffix.
func FormatDateTime(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(Layout)
}
