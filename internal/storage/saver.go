package storage

import (
	"context"
	"sync"
	"time"

	"chorebot/pkg/logx"
)

// Saver coalesces bursts of changes into one write: each Schedule pushes the
// write out by the debounce delay and only the newest state is written.
type Saver struct {
	store Store
	delay time.Duration
	log   logx.Logger

	mu      sync.Mutex
	pending *State
	gen     uint64 // generation of the newest state handed to the saver
	timer   *time.Timer

	writeMu  sync.Mutex
	savedGen uint64
}

func NewSaver(store Store, delay time.Duration, log logx.Logger) *Saver {
	if log.IsZero() {
		log = logx.Nop()
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Saver{store: store, delay: delay, log: log}
}

// Schedule queues st for a debounced write. st is copied.
func (s *Saver) Schedule(st State) {
	cp := st.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.pending = &cp
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
		return
	}
	s.timer.Reset(s.delay)
}

// SaveNow writes st immediately and discards any pending debounced write.
func (s *Saver) SaveNow(ctx context.Context, st State) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.write(ctx, st, gen)
}

// Flush writes the pending state, if any.
func (s *Saver) Flush(ctx context.Context) error {
	st, gen, ok := s.take()
	if !ok {
		return nil
	}
	return s.write(ctx, st, gen)
}

// Pending reports whether a debounced write is waiting.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Saver) fire() {
	st, gen, ok := s.take()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.write(ctx, st, gen); err != nil {
		s.log.Error("debounced save failed", logx.Err(err))
	}
}

func (s *Saver) take() (State, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return State{}, 0, false
	}
	st := *s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	return st, s.gen, true
}

// write skips states older than the last one written, so a slow debounced
// write cannot overwrite a newer immediate one.
func (s *Saver) write(ctx context.Context, st State, gen uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if gen <= s.savedGen {
		return nil
	}
	if err := s.store.Save(ctx, st); err != nil {
		return err
	}
	s.savedGen = gen
	return nil
}
