// Package scheduler registers named schedules on robfig/cron and runs
// their jobs with a per-run timeout.
//
// Schedules come from a cronspec.Descriptor (the polling recurrence), a
// raw cron expression, or a one-shot time (AddOnce).
package scheduler
