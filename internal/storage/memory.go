package storage

import (
	"context"
	"sync"
	"time"
)

// memStore keeps everything in process memory.
type memStore struct {
	mu    sync.Mutex
	state State
	dedup map[string]time.Time
	saves int
}

// NewMemory returns an in-memory Store.
func NewMemory() Store {
	return &memStore{dedup: map[string]time.Time{}}
}

// NewMemoryWith returns an in-memory Store preloaded with st.
func NewMemoryWith(st State) Store {
	return &memStore{state: st.Clone(), dedup: map[string]time.Time{}}
}

func (m *memStore) Load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.state = st.Clone()
	m.saves++
	m.mu.Unlock()
	return nil
}

func (m *memStore) PutDedup(_ context.Context, key string, until time.Time) error {
	m.mu.Lock()
	m.dedup[key] = until
	m.mu.Unlock()
	return nil
}

func (m *memStore) GetDedup(_ context.Context, key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.dedup[key]
	return until, ok, nil
}

func (m *memStore) Close() error { return nil }

// SaveCount reports how many times Save ran on an in-memory store (0 for
// other drivers).
func SaveCount(s Store) int {
	m, ok := s.(*memStore)
	if !ok {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
