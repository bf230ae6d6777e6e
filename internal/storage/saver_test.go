package storage

import (
	"context"
	"testing"
	"time"

	"chorebot/pkg/logx"
)

func TestSaverCoalescesBursts(t *testing.T) {
	t.Parallel()
	mem := NewMemory()
	s := NewSaver(mem, time.Hour, logx.Nop())

	st := sampleState()
	for i := 0; i < 5; i++ {
		st.Rooms[0].Name = "Kitchen " + string(rune('A'+i))
		s.Schedule(st)
	}
	if !s.Pending() {
		t.Fatal("expected a pending write")
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := SaveCount(mem); n != 1 {
		t.Fatalf("saves = %d, want 1", n)
	}
	got, _ := mem.Load(context.Background())
	if got.Rooms[0].Name != "Kitchen E" {
		t.Fatalf("saved %q, want the newest state", got.Rooms[0].Name)
	}
	if err := s.Flush(context.Background()); err != nil || SaveCount(mem) != 1 {
		t.Fatalf("second Flush wrote again (err=%v)", err)
	}
}

func TestSaverDebounceFires(t *testing.T) {
	t.Parallel()
	mem := NewMemory()
	s := NewSaver(mem, 20*time.Millisecond, logx.Nop())
	s.Schedule(sampleState())

	deadline := time.Now().Add(2 * time.Second)
	for SaveCount(mem) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if SaveCount(mem) != 1 || s.Pending() {
		t.Fatalf("debounced write did not happen (saves=%d pending=%v)", SaveCount(mem), s.Pending())
	}
}

func TestSaveNowDropsPending(t *testing.T) {
	t.Parallel()
	mem := NewMemory()
	s := NewSaver(mem, time.Hour, logx.Nop())

	old := sampleState()
	s.Schedule(old)
	newer := old.Clone()
	newer.Chores = nil
	if err := s.SaveNow(context.Background(), newer); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}
	if s.Pending() {
		t.Fatal("pending write should be discarded")
	}
	_ = s.Flush(context.Background())
	got, _ := mem.Load(context.Background())
	if len(got.Chores) != 0 {
		t.Fatalf("stale state overwrote the immediate save")
	}
}
