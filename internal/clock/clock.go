// Package clock is the time source for everything that asks "what day is it".
//
// Production code uses Real with the configured household timezone; tests use
// Fake and move time by hand.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"chorebot/internal/recurrence"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by time.Now, reporting times in loc (local time
// when loc is nil).
func Real(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return realClock{loc: loc}
}

type realClock struct{ loc *time.Location }

func (c realClock) Now() time.Time { return time.Now().In(c.loc) }

// Zoned is a real clock whose location can be swapped while in use, for
// timezone changes on config reload.
type Zoned struct {
	loc atomic.Pointer[time.Location]
}

func NewZoned(loc *time.Location) *Zoned {
	z := &Zoned{}
	z.SetLocation(loc)
	return z
}

func (z *Zoned) Now() time.Time { return time.Now().In(z.loc.Load()) }

func (z *Zoned) Location() *time.Location { return z.loc.Load() }

// SetLocation changes the reported location; nil means local time.
func (z *Zoned) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	z.loc.Store(loc)
}

// Today returns the civil date of c.Now() in the clock's own location.
func Today(c Clock) recurrence.Date {
	if c == nil {
		return recurrence.DateOf(time.Now())
	}
	return recurrence.DateOf(c.Now())
}

// FakeClock is a manually driven Clock. It is safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Fake returns a FakeClock stopped at t.
func Fake(t time.Time) *FakeClock { return &FakeClock{now: t} }

// FakeAt returns a FakeClock stopped at 09:00 on the given YYYY-MM-DD date in
// UTC. It panics on a malformed date.
func FakeAt(date string) *FakeClock {
	d := recurrence.MustDate(date)
	return Fake(d.In(time.UTC).Add(9 * time.Hour))
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// AdvanceDays moves the clock forward by n calendar days.
func (c *FakeClock) AdvanceDays(n int) {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, n)
	c.mu.Unlock()
}
