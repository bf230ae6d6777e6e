package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"chorebot/pkg/logx"
)

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{in: "08:00", h: 8},
		{in: " 23:59 ", h: 23, m: 59},
		{in: "7:05", h: 7, m: 5},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
		{in: "1:2:3", wantErr: true},
	}
	for _, tt := range tests {
		h, m, err := ParseHHMM(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHHMM(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && (h != tt.h || m != tt.m) {
			t.Fatalf("ParseHHMM(%q) = %d:%d", tt.in, h, m)
		}
	}
}

func TestAddDailyNextRun(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+7", 7*3600)
	s := New(loc, logx.Nop())
	if err := s.AddDaily("notify", "08:30", time.Second, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("AddDaily: %v", err)
	}
	infos := s.Schedules()
	if len(infos) != 1 || infos[0].Spec != "30 8 * * *" {
		t.Fatalf("Schedules = %+v", infos)
	}

	sched, err := s.parser.Parse(infos[0].Spec)
	if err != nil {
		t.Fatal(err)
	}
	from := time.Date(2024, 6, 15, 9, 0, 0, 0, loc)
	if got, want := sched.Next(from), time.Date(2024, 6, 16, 8, 30, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}

	if err := s.AddDaily("bad", "8.30", 0, func(context.Context) error { return nil }); err == nil {
		t.Fatal("AddDaily accepted a malformed time")
	}
}

func TestAddCronUpsertAndRemove(t *testing.T) {
	t.Parallel()
	s := New(time.UTC, logx.Nop())
	job := func(context.Context) error { return nil }
	if err := s.AddCron("refresh", "@every 15m", 0, job); err != nil {
		t.Fatal(err)
	}
	if err := s.AddInterval("refresh", 5*time.Minute, 0, job); err != nil {
		t.Fatal(err)
	}
	if infos := s.Schedules(); len(infos) != 1 || infos[0].Spec != "@every 5m0s" {
		t.Fatalf("Schedules = %+v", infos)
	}
	if err := s.AddCron("broken", "not a spec", 0, job); err == nil {
		t.Fatal("AddCron accepted an invalid spec")
	}
	if err := s.AddInterval("zero", 0, 0, job); err == nil {
		t.Fatal("AddInterval accepted a zero interval")
	}
	if !s.Remove("refresh") || s.Remove("refresh") {
		t.Fatal("Remove did not report removal exactly once")
	}
}

func TestCronTriggersJob(t *testing.T) {
	t.Parallel()
	s := New(time.UTC, logx.Nop())
	var runs atomic.Int32
	fired := make(chan struct{}, 8)
	err := s.AddCron("tick", "* * * * * *", time.Second, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job context has no deadline")
		}
		runs.Add(1)
		fired <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Start(context.Background())
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(ctx)

	after := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	if runs.Load() != after {
		t.Fatal("job fired after Stop")
	}
	if len(s.Schedules()) != 1 {
		t.Fatal("Stop dropped the schedule definition")
	}
}

func TestRunNow(t *testing.T) {
	t.Parallel()
	s := New(time.UTC, logx.Nop())
	boom := errors.New("boom")
	_ = s.AddDaily("notify", "08:00", 0, func(context.Context) error { return boom })
	if err := s.RunNow(context.Background(), "notify"); !errors.Is(err, boom) {
		t.Fatalf("RunNow err = %v", err)
	}
	if err := s.RunNow(context.Background(), "missing"); err == nil {
		t.Fatal("RunNow on unknown schedule succeeded")
	}
}

func TestSetLocationRestarts(t *testing.T) {
	t.Parallel()
	s := New(time.UTC, logx.Nop())
	_ = s.AddDaily("notify", "08:00", 0, func(context.Context) error { return nil })
	s.Start(context.Background())
	defer s.Stop(context.Background())

	loc := time.FixedZone("X", 3600)
	s.SetLocation(loc)
	if s.Location() != loc {
		t.Fatal("location not updated")
	}
	infos := s.Schedules()
	if len(infos) != 1 || infos[0].Next.IsZero() {
		t.Fatalf("Schedules after restart = %+v", infos)
	}
	if _, off := infos[0].Next.Zone(); off != 3600 {
		t.Fatalf("Next zone offset = %d", off)
	}
}

func TestSpreadScheduleFirstRun(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	sched, jitter := makeIntervalScheduleWithSpread(time.Minute, now, "refresh")
	if jitter < 0 || jitter >= 30*time.Second {
		t.Fatalf("jitter = %v", jitter)
	}
	first := sched.Next(now)
	if want := now.Add(time.Minute + jitter); !first.Equal(want) {
		t.Fatalf("first = %v, want %v", first, want)
	}
	var _ cron.Schedule = sched
}
