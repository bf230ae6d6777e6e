package storage

import (
	"context"
	"errors"
	"time"

	"chorebot/internal/recurrence"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrClosed   = errors.New("storage closed")
)

// Config selects and configures a driver.
//
// Driver values:
//   - "file": snapshot file at Path, Format "json" (default) or "cbor"
//   - "sqlite": SQLite database at Path
//   - "" or "none": in-memory only, nothing survives a restart
type Config struct {
	Driver      string
	Path        string
	Format      string
	BusyTimeout time.Duration // sqlite only
}

// Store is the persistence API used by the chores service and the notifier.
type Store interface {
	// Load returns the persisted state; an empty store yields a zero State.
	Load(ctx context.Context) (State, error)
	// Save replaces the persisted state with s.
	Save(ctx context.Context, s State) error

	PutDedup(ctx context.Context, key string, until time.Time) error
	GetDedup(ctx context.Context, key string) (until time.Time, ok bool, err error)

	Close() error
}

// State is everything chorebot remembers about the household.
type State struct {
	Rooms   []Room         `json:"rooms"`
	Users   []User         `json:"users"`
	Chores  []Chore        `json:"chores"`
	History []HistoryEntry `json:"history"`
}

// Clone returns a deep copy so callers can hand state to a background saver
// while continuing to mutate their own.
func (s State) Clone() State {
	out := State{
		Rooms:   append([]Room(nil), s.Rooms...),
		Users:   append([]User(nil), s.Users...),
		Chores:  make([]Chore, len(s.Chores)),
		History: append([]HistoryEntry(nil), s.History...),
	}
	for i, c := range s.Chores {
		out.Chores[i] = c.Clone()
	}
	if len(s.Chores) == 0 {
		out.Chores = nil
	}
	return out
}

type Room struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	IsCustom bool   `json:"is_custom"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	IsCustom bool   `json:"is_custom"`
}

// Chore is one stored chore. The recurrence fields are flattened into the
// record, matching the on-disk layout.
type Chore struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	RoomID          string          `json:"room_id"`
	AssignedTo      string          `json:"assigned_to,omitempty"`
	NextDue         recurrence.Date `json:"next_due"`
	LastCompleted   recurrence.Date `json:"last_completed,omitzero"`
	LastCompletedBy string          `json:"last_completed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	IsCompleted     bool            `json:"is_completed,omitempty"`

	recurrence.Config
}

// Clone copies c including its anchor slices and pointers.
func (c Chore) Clone() Chore {
	if c.AnchorDaysOfWeek != nil {
		c.AnchorDaysOfWeek = append([]time.Weekday(nil), c.AnchorDaysOfWeek...)
	}
	if c.AnchorDayOfMonth != nil {
		v := *c.AnchorDayOfMonth
		c.AnchorDayOfMonth = &v
	}
	if c.AnchorWeek != nil {
		v := *c.AnchorWeek
		c.AnchorWeek = &v
	}
	if c.AnchorWeekday != nil {
		v := *c.AnchorWeekday
		c.AnchorWeekday = &v
	}
	return c
}

type HistoryEntry struct {
	ID              string    `json:"id"`
	ChoreID         string    `json:"chore_id"`
	ChoreName       string    `json:"chore_name"`
	CompletedAt     time.Time `json:"completed_at"`
	CompletedBy     string    `json:"completed_by,omitempty"`
	CompletedByName string    `json:"completed_by_name,omitempty"`
}
