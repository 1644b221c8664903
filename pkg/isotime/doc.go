// Package isotime parses and formats the ISO-8601 values carried in
// demand-response payloads.
//
// Durations use fixed calendar approximations:
//   - 1 year  = 365 days
//   - 1 month = 30 days
//   - 1 week  = 7 days
//
// Timestamps must carry the UTC designator ("Z"). Parsed values are
// normalized to time.UTC and truncated to microsecond precision.
package isotime
