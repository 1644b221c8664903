package isotime

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// The trailing alternative is the bare week form "2W".
var reDuration = regexp.MustCompile(
	`^([-+])?(?:P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?` +
		`(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:[.,](\d+))?S)?)?|(\d+)W)$`,
)

// ParseDuration parses an ISO-8601 duration such as "PT15M", "P1DT2H",
// "P2W" or "-PT5.5S". A bare week count ("2W", "-2W") is accepted too.
//
// At least one component must be present, and a "T" designator must be
// followed by at least one time component. Fractional seconds beyond
// microsecond precision are truncated.
func ParseDuration(text string) (time.Duration, error) {
	s := strings.TrimSpace(text)
	m := reDuration.FindStringSubmatch(s)
	if m == nil {
		return 0, durationError(text)
	}
	if strings.HasSuffix(s, "T") || strings.HasSuffix(s, "P") {
		return 0, durationError(text)
	}

	weeks := m[4]
	if weeks == "" {
		weeks = m[10]
	}
	units := []struct {
		raw  string
		unit time.Duration
	}{
		{m[2], year},
		{m[3], month},
		{weeks, week},
		{m[5], day},
		{m[6], time.Hour},
		{m[7], time.Minute},
		{m[8], time.Second},
	}

	var (
		total time.Duration
		seen  bool
	)
	for _, u := range units {
		if u.raw == "" {
			continue
		}
		seen = true
		n, err := strconv.ParseInt(u.raw, 10, 64)
		if err != nil || n > int64(math.MaxInt64/u.unit) {
			return 0, durationError(text)
		}
		part := time.Duration(n) * u.unit
		if total > math.MaxInt64-part {
			return 0, durationError(text)
		}
		total += part
	}
	if !seen {
		return 0, durationError(text)
	}
	if frac := m[9]; frac != "" {
		us := fractionMicros(frac)
		if total > math.MaxInt64-us {
			return 0, durationError(text)
		}
		total += us
	}

	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// FormatDuration renders d in the form ParseDuration accepts, using days as
// the largest unit ("P1DT2H30M", "PT0.25S", "-PT5M"). Zero renders as "PT0S".
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	d = d.Truncate(time.Microsecond)

	days := d / day
	d -= days * day
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	micros := (d - seconds*time.Second) / time.Microsecond

	b.WriteByte('P')
	if days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10))
		b.WriteByte('D')
	}
	if hours > 0 || minutes > 0 || seconds > 0 || micros > 0 {
		b.WriteByte('T')
		if hours > 0 {
			b.WriteString(strconv.FormatInt(int64(hours), 10))
			b.WriteByte('H')
		}
		if minutes > 0 {
			b.WriteString(strconv.FormatInt(int64(minutes), 10))
			b.WriteByte('M')
		}
		if seconds > 0 || micros > 0 {
			b.WriteString(strconv.FormatInt(int64(seconds), 10))
			if micros > 0 {
				frac := strings.TrimRight(strconv.FormatInt(int64(micros)+1_000_000, 10)[1:], "0")
				b.WriteByte('.')
				b.WriteString(frac)
			}
			b.WriteByte('S')
		}
	}
	return b.String()
}

// fractionMicros converts the digits after a decimal separator into a
// microsecond-truncated duration. "5" -> 500ms, "123456789" -> 123456us.
func fractionMicros(digits string) time.Duration {
	if len(digits) > 6 {
		digits = digits[:6]
	}
	digits += strings.Repeat("0", 6-len(digits))
	n, _ := strconv.Atoi(digits)
	return time.Duration(n) * time.Microsecond
}
