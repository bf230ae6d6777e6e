// Package recurrence computes when a recurring chore is due next.
//
// Two recurrence models are supported:
//   - interval: a fixed offset (days, weeks, months, years) from a reference date
//   - anchored: the next fixed calendar slot (weekdays, a day of the month, or a
//     week pattern such as "2nd Tuesday" / "last Friday")
//
// Everything here is a pure function of its arguments. There is no shared state,
// no I/O and nothing blocks, so callers may use the package from any goroutine.
//
// Weekday codes follow time.Weekday (Sunday=0 .. Saturday=6), which is also the
// encoding used by persisted chore records.
package recurrence
