package scheduler

import (
	"fmt"
	"strings"
	"time"

	"leadr/pkg/cronspec"
	"leadr/pkg/isotime"
)

// SpecKind describes the normalized kind of a schedule string.
type SpecKind int

const (
	SpecCron SpecKind = iota
	SpecPeriod
)

// ParsedSpec represents a parsed schedule string.
//
// Supported forms:
//   - Cron: "*/5 * * * *", "0 */10 * * * *", "@hourly"
//   - Period as ISO-8601 duration: "PT10S", "PT5M"
//   - Period as Go duration: "10s", "2h30m"
//
// Periods are turned into a cronspec.Descriptor, so "90s" fires every minute.
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "every:" forces period parsing
type ParsedSpec struct {
	Kind       SpecKind
	Cron       string
	Every      time.Duration
	Descriptor cronspec.Descriptor
	Source     string // "cron" | "iso8601" | "duration"
}

// ParseSchedule parses a schedule string into a cron expression or a
// polling descriptor. randomize only applies to periods.
func ParseSchedule(raw string, randomize bool) (ParsedSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedSpec{}, fmt.Errorf("schedule required")
	}

	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return ParsedSpec{}, fmt.Errorf("cron schedule required after 'cron:'")
		}
		return ParsedSpec{Kind: SpecCron, Cron: expr, Source: "cron"}, nil
	}
	if strings.HasPrefix(low, "every:") {
		return parsePeriod(strings.TrimSpace(s[len("every:"):]), randomize)
	}

	// any whitespace or leading '@' => cron
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return ParsedSpec{Kind: SpecCron, Cron: s, Source: "cron"}, nil
	}

	ps, err := parsePeriod(s, randomize)
	if err != nil {
		return ParsedSpec{}, fmt.Errorf(
			"invalid schedule %q (use cron like '*/5 * * * *', ISO-8601 like 'PT10S', or duration like '55m')",
			raw,
		)
	}
	return ps, nil
}

func parsePeriod(v string, randomize bool) (ParsedSpec, error) {
	if v == "" {
		return ParsedSpec{}, fmt.Errorf("period required")
	}
	var (
		d   time.Duration
		src string
		err error
	)
	if strings.HasPrefix(strings.TrimLeft(v, "+-"), "P") {
		d, err = isotime.ParseDuration(v)
		src = "iso8601"
	} else {
		d, err = time.ParseDuration(v)
		src = "duration"
	}
	if err != nil {
		return ParsedSpec{}, fmt.Errorf("invalid period %q: %w", v, err)
	}
	desc, err := cronspec.Config(d, randomize)
	if err != nil {
		return ParsedSpec{}, err
	}
	return ParsedSpec{Kind: SpecPeriod, Every: d, Descriptor: desc, Source: src}, nil
}
