package config

import (
	"fmt"
	"strings"
	"time"

	"leadr/pkg/isotime"
)

// ParseDurationField parses raw as an ISO-8601 duration when it starts with
// "P" (optionally signed), otherwise as a Go duration. Empty means 0.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	var (
		d   time.Duration
		err error
	)
	if isISO(s) {
		d, err = isotime.ParseDuration(s)
	} else {
		d, err = time.ParseDuration(s)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

func isISO(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.HasPrefix(s, "P")
}
