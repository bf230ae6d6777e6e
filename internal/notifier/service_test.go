package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chorebot/internal/eventbus"
	"chorebot/internal/storage"
	"chorebot/internal/transport"
	"chorebot/pkg/logx"
)

type fakeAdapter struct {
	mu       sync.Mutex
	failures int // fail this many sends before succeeding
	sent     []string
	calls    int
}

func (f *fakeAdapter) Start(context.Context, chan<- transport.Update) error { return nil }
func (f *fakeAdapter) Stop(context.Context) error                           { return nil }
func (f *fakeAdapter) AnswerCallback(context.Context, string, string) error { return nil }

func (f *fakeAdapter) SendText(_ context.Context, to transport.ChatTarget, text string, _ *transport.SendOptions) (transport.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return transport.MessageRef{}, errors.New("temporary failure")
	}
	f.sent = append(f.sent, text)
	return transport.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func (f *fakeAdapter) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), f.calls
}

func fastConfig() Config {
	return Config{
		Workers:       1,
		RatePerSec:    1000,
		RetryMax:      2,
		RetryBase:     time.Millisecond,
		RetryMaxDelay: 5 * time.Millisecond,
		DedupWindow:   time.Hour,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func note(text string) transport.Notification {
	return transport.Notification{Channel: "due", Target: transport.ChatTarget{ChatID: 42}, Text: text}
}

func TestNotifyDeliversAndDedups(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{}
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16)
	defer unsub()

	s := New(fastConfig(), ad, logx.Nop(), bus, nil)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop(ctx)

	if err := s.Notify(ctx, note("You have 1 chore due today")); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := s.Notify(ctx, note("You have 1 chore due today")); err != nil {
		t.Fatalf("Notify duplicate: %v", err)
	}
	waitFor(t, func() bool { sent, _ := ad.snapshot(); return len(sent) == 1 })

	seen := map[string]bool{}
	waitFor(t, func() bool {
		select {
		case ev := <-events:
			seen[ev.Type] = true
		default:
		}
		return seen[eventbus.NotifierDeduped] && seen[eventbus.NotifierSent]
	})
	if got := s.History(); len(got) != 1 || got[0].Channel != "due" {
		t.Fatalf("History = %+v", got)
	}
}

func TestNotifyRetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{failures: 2}
	s := New(fastConfig(), ad, logx.Nop(), nil, nil)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop(ctx)

	if err := s.Notify(ctx, note("retry me")); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	waitFor(t, func() bool { sent, _ := ad.snapshot(); return len(sent) == 1 })
	if _, calls := ad.snapshot(); calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestNotifyGivesUpAfterRetryMax(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{failures: 100}
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16)
	defer unsub()
	s := New(fastConfig(), ad, logx.Nop(), bus, nil)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop(ctx)

	_ = s.Notify(ctx, note("never"))
	waitFor(t, func() bool {
		select {
		case ev := <-events:
			return ev.Type == eventbus.NotifierFailed
		default:
			return false
		}
	})
	if _, calls := ad.snapshot(); calls != 3 {
		t.Fatalf("calls = %d, want 1 + RetryMax", calls)
	}
}

func TestFailedNotificationCanBeResent(t *testing.T) {
	t.Parallel()
	store := storage.NewMemory()
	cfg := fastConfig()
	cfg.PersistDedup = true
	ad := &fakeAdapter{failures: 3}
	bus := eventbus.New()
	events, unsub := bus.Subscribe(16, eventbus.NotifierFailed)
	defer unsub()
	s := New(cfg, ad, logx.Nop(), bus, store)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop(ctx)

	n := note("Vacuum the hallway is due today")
	n.DedupKey = "due:2024-06-15:42"
	if err := s.Notify(ctx, n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	select {
	case <-events:
	case <-time.After(3 * time.Second):
		t.Fatal("no failure event")
	}

	if err := s.Notify(ctx, n); err != nil {
		t.Fatalf("Notify after recovery: %v", err)
	}
	waitFor(t, func() bool { sent, _ := ad.snapshot(); return len(sent) == 1 })
	if _, calls := ad.snapshot(); calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
}

func TestPersistentDedupAcrossRestart(t *testing.T) {
	t.Parallel()
	store := storage.NewMemory()
	cfg := fastConfig()
	cfg.PersistDedup = true
	ctx := context.Background()
	n := note("daily")
	n.DedupKey = "due:2024-06-15:42"

	first := &fakeAdapter{}
	s1 := New(cfg, first, logx.Nop(), nil, store)
	s1.Start(ctx)
	if err := s1.Notify(ctx, n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	waitFor(t, func() bool {
		_, ok, _ := store.GetDedup(ctx, n.DedupKey)
		return ok
	})
	s1.Stop(ctx)

	second := &fakeAdapter{}
	s2 := New(cfg, second, logx.Nop(), nil, store)
	s2.Start(ctx)
	if err := s2.Notify(ctx, n); err != nil {
		t.Fatalf("Notify after restart: %v", err)
	}
	s2.Stop(ctx)
	if sent, _ := second.snapshot(); len(sent) != 0 {
		t.Fatalf("duplicate sent after restart: %v", sent)
	}
}

func TestNotifyAfterStop(t *testing.T) {
	t.Parallel()
	s := New(fastConfig(), &fakeAdapter{}, logx.Nop(), nil, nil)
	ctx := context.Background()
	if err := s.Notify(ctx, note("x")); !errors.Is(err, ErrStopped) {
		t.Fatalf("Notify before Start = %v", err)
	}
	s.Start(ctx)
	s.Stop(ctx)
	if err := s.Notify(ctx, note("x")); !errors.Is(err, ErrStopped) {
		t.Fatalf("Notify after Stop = %v", err)
	}
	// Restart works.
	s.Start(ctx)
	defer s.Stop(ctx)
	if err := s.Notify(ctx, note("y")); err != nil {
		t.Fatalf("Notify after restart: %v", err)
	}
}

func TestDedupKey(t *testing.T) {
	t.Parallel()
	a := dedupKey(note("hello"))
	if a == "" || a != dedupKey(note("hello")) {
		t.Fatalf("dedupKey not stable: %q", a)
	}
	if a == dedupKey(note("hello!")) {
		t.Fatal("different text gave the same key")
	}
	other := note("hello")
	other.Target.ThreadID = 3
	if a == dedupKey(other) {
		t.Fatal("different thread gave the same key")
	}
	if got := dedupKey(transport.Notification{Text: "x"}); got != "" {
		t.Fatalf("no channel: key %q", got)
	}
	explicit := note("hello")
	explicit.DedupKey = "k"
	if dedupKey(explicit) != "k" {
		t.Fatal("explicit key ignored")
	}
}

func TestRetryDelayBounds(t *testing.T) {
	t.Parallel()
	cfg := Config{RetryBase: 100 * time.Millisecond, RetryMaxDelay: time.Second}.withDefaults()
	for attempt := 1; attempt <= 10; attempt++ {
		d := retryDelay(cfg, attempt)
		if d <= 0 || d > time.Second {
			t.Fatalf("attempt %d: delay %v out of range", attempt, d)
		}
	}
	if d := retryDelay(cfg, 1); d < 70*time.Millisecond || d > 130*time.Millisecond {
		t.Fatalf("first delay %v, want 70ms..130ms", d)
	}
}

func TestPruneDedup(t *testing.T) {
	t.Parallel()
	now := time.Now()
	m := map[string]time.Time{
		"expired": now.Add(-time.Second),
		"a":       now.Add(time.Minute),
		"b":       now.Add(2 * time.Minute),
		"c":       now.Add(3 * time.Minute),
	}
	pruneDedup(m, now, 2)
	if len(m) != 2 {
		t.Fatalf("len = %d", len(m))
	}
	if _, ok := m["a"]; ok {
		t.Fatal("soonest-expiring entry kept")
	}
}
