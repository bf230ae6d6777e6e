// Package scheduler triggers named jobs on cron, interval and daily
// schedules in a configurable timezone.
//
// Schedules are upserted by name and survive Stop/Start and timezone
// changes. A trigger that fires while the previous run of the same job is
// still going is skipped.
package scheduler
