package chores

import (
	"context"
	"sort"

	"chorebot/internal/eventbus"
	"chorebot/internal/recurrence"
	"chorebot/internal/storage"
	"chorebot/pkg/logx"
)

// ChoreView is an active chore with its room name resolved.
type ChoreView struct {
	storage.Chore
	RoomName string
}

// Snapshot is the due-date view of all active chores for one day.
//
// Overdue chores also appear in DueToday. DueSoon holds chores due after
// today up to and including WindowEnd.
type Snapshot struct {
	Today     recurrence.Date
	WindowEnd recurrence.Date

	Active   []ChoreView
	DueToday []ChoreView
	DueSoon  []ChoreView
	Overdue  []ChoreView
	ByRoom   map[string][]ChoreView

	Rooms []storage.Room
	Users []storage.User
}

func (s Snapshot) HasOverdue() bool { return len(s.Overdue) > 0 }

// DueOn returns active chores due exactly on d.
func (s Snapshot) DueOn(d recurrence.Date) []ChoreView {
	var out []ChoreView
	for _, c := range s.Active {
		if c.NextDue == d {
			out = append(out, c)
		}
	}
	return out
}

// Refresh rebuilds the snapshot for today, caches it and publishes
// RefreshDone.
func (s *Service) Refresh(ctx context.Context) Snapshot {
	today := s.today()
	s.mu.Lock()
	snap := buildSnapshot(s.state, today, s.dueWindow)
	s.snap = snap
	s.mu.Unlock()

	s.log.Debug("snapshot refreshed",
		logx.Stringer("today", today),
		logx.Int("active", len(snap.Active)),
		logx.Int("due_today", len(snap.DueToday)),
		logx.Int("due_soon", len(snap.DueSoon)),
		logx.Int("overdue", len(snap.Overdue)),
	)
	eventbus.Publish(s.bus, eventbus.RefreshDone, snap)
	return snap
}

// Snapshot returns the most recent refresh.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func buildSnapshot(st storage.State, today recurrence.Date, window int) Snapshot {
	snap := Snapshot{
		Today:     today,
		WindowEnd: today.AddDays(window),
		ByRoom:    make(map[string][]ChoreView, len(st.Rooms)),
		Rooms:     append([]storage.Room(nil), st.Rooms...),
		Users:     append([]storage.User(nil), st.Users...),
	}
	names := make(map[string]string, len(st.Rooms))
	for _, r := range st.Rooms {
		names[r.ID] = r.Name
		snap.ByRoom[r.ID] = nil
	}

	for _, c := range st.Chores {
		if c.IsCompleted {
			continue
		}
		name, ok := names[c.RoomID]
		if !ok {
			name = unknownRoomName
		}
		v := ChoreView{Chore: c.Clone(), RoomName: name}
		snap.Active = append(snap.Active, v)

		switch {
		case c.NextDue.Before(today):
			snap.Overdue = append(snap.Overdue, v)
			snap.DueToday = append(snap.DueToday, v)
		case c.NextDue == today:
			snap.DueToday = append(snap.DueToday, v)
		case !c.NextDue.After(snap.WindowEnd):
			snap.DueSoon = append(snap.DueSoon, v)
		}
		if _, ok := snap.ByRoom[c.RoomID]; ok {
			snap.ByRoom[c.RoomID] = append(snap.ByRoom[c.RoomID], v)
		}
	}

	byDue := func(vs []ChoreView) {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].NextDue.Before(vs[j].NextDue) })
	}
	byDue(snap.DueSoon)
	byDue(snap.Overdue)
	return snap
}
