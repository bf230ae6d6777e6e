package clock

import (
	"testing"
	"time"
)

func TestTodayUsesClockLocation(t *testing.T) {
	t.Parallel()
	tokyo := time.FixedZone("JST", 9*3600)
	// 20:00 UTC on June 14 is already June 15 in Tokyo.
	c := Fake(time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC).In(tokyo))
	if got := Today(c).String(); got != "2024-06-15" {
		t.Fatalf("Today = %s, want 2024-06-15", got)
	}
}

func TestFakeAdvance(t *testing.T) {
	t.Parallel()
	c := FakeAt("2024-02-28")
	c.AdvanceDays(1)
	if got := Today(c).String(); got != "2024-02-29" {
		t.Fatalf("after one day: %s", got)
	}
	c.Advance(24 * time.Hour)
	if got := Today(c).String(); got != "2024-03-01" {
		t.Fatalf("after 24h: %s", got)
	}
}

func TestRealReportsInLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("X", -5*3600)
	if got := Real(loc).Now().Location(); got != loc {
		t.Fatalf("location = %v, want %v", got, loc)
	}
}

func TestZonedSetLocation(t *testing.T) {
	t.Parallel()
	z := NewZoned(nil)
	if z.Location() != time.Local {
		t.Fatalf("default location = %v", z.Location())
	}
	tokyo := time.FixedZone("JST", 9*3600)
	z.SetLocation(tokyo)
	if _, off := z.Now().Zone(); off != 9*3600 {
		t.Fatalf("offset = %d", off)
	}
}
