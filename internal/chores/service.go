package chores

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chorebot/internal/clock"
	"chorebot/internal/eventbus"
	"chorebot/internal/recurrence"
	"chorebot/internal/storage"
	"chorebot/pkg/logx"
)

type Options struct {
	Store storage.Store
	// Saver debounces edits; built over Store with SaveDebounce when nil.
	Saver        *storage.Saver
	SaveDebounce time.Duration
	Bus          eventbus.Bus
	Clock        clock.Clock
	Log          logx.Logger
	// DueWindowDays is the "due soon" horizon; 0 means 7.
	DueWindowDays int
	// NewID overrides id generation (8 hex characters by default).
	NewID func() string
}

// Service is safe for concurrent use.
type Service struct {
	mu    sync.RWMutex
	state storage.State
	snap  Snapshot

	store storage.Store
	saver *storage.Saver
	bus   eventbus.Bus
	clock clock.Clock
	log   logx.Logger
	newID func() string

	dueWindow int
}

func New(opts Options) *Service {
	if opts.Log.IsZero() {
		opts.Log = logx.Nop()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	log := opts.Log.With(logx.String("comp", "chores"))
	if opts.Saver == nil {
		opts.Saver = storage.NewSaver(opts.Store, opts.SaveDebounce, log)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real(nil)
	}
	if opts.NewID == nil {
		opts.NewID = hexID
	}
	s := &Service{
		store: opts.Store,
		saver: opts.Saver,
		bus:   opts.Bus,
		clock: opts.Clock,
		log:   log,
		newID: opts.NewID,
	}
	s.SetDueWindow(opts.DueWindowDays)
	return s
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Load replaces the in-memory state with the store's and refreshes.
func (s *Service) Load(ctx context.Context) error {
	st, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.log.Info("state loaded",
		logx.Int("rooms", len(st.Rooms)),
		logx.Int("users", len(st.Users)),
		logx.Int("chores", len(st.Chores)),
		logx.Int("history", len(st.History)),
	)
	s.Refresh(ctx)
	return nil
}

// Flush writes any pending debounced save.
func (s *Service) Flush(ctx context.Context) error { return s.saver.Flush(ctx) }

// SetDueWindow changes the "due soon" horizon in days (0 means 7).
func (s *Service) SetDueWindow(days int) {
	if days <= 0 {
		days = 7
	}
	s.mu.Lock()
	s.dueWindow = days
	s.mu.Unlock()
}

func (s *Service) today() recurrence.Date { return clock.Today(s.clock) }

// commitLocked persists the current state. Edits are debounced; completions
// and removals are written immediately. Callers hold s.mu.
func (s *Service) commitLocked(ctx context.Context, immediate bool) error {
	if immediate {
		if err := s.saver.SaveNow(ctx, s.state); err != nil {
			s.log.Error("save failed", logx.Err(err))
			return err
		}
		return nil
	}
	s.saver.Schedule(s.state)
	return nil
}

// changed publishes typ and rebuilds the snapshot.
func (s *Service) changed(ctx context.Context, typ string, data any) {
	eventbus.Publish(s.bus, typ, data)
	s.Refresh(ctx)
}

func validateName(kind, name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationf("%s name cannot be empty", kind)
	}
	if n := len([]rune(name)); n > max {
		return "", validationf("%s name too long (max %d characters)", kind, max)
	}
	return name, nil
}

func validRoomID(id string) error {
	if strings.TrimSpace(id) == "" {
		return validationf("room id cannot be empty")
	}
	if !strings.HasPrefix(id, RoomPrefixArea) && !strings.HasPrefix(id, RoomPrefixCustom) {
		return validationf("invalid room id %q: must start with %q or %q", id, RoomPrefixArea, RoomPrefixCustom)
	}
	return nil
}

func (s *Service) AddChore(ctx context.Context, in ChoreInput) (storage.Chore, error) {
	name, err := validateName("chore", in.Name, MaxChoreNameLength)
	if err != nil {
		return storage.Chore{}, err
	}
	if err := validRoomID(in.RoomID); err != nil {
		return storage.Chore{}, err
	}
	cfg := in.Config.Normalize()
	if err := cfg.Validate(); err != nil {
		return storage.Chore{}, err
	}

	next := in.StartDate
	if next.IsZero() {
		next = s.today()
	}
	c := storage.Chore{
		ID:         s.newID(),
		Name:       name,
		RoomID:     in.RoomID,
		AssignedTo: in.AssignedTo,
		NextDue:    next,
		CreatedAt:  s.clock.Now(),
		Config:     cfg,
	}

	s.mu.Lock()
	if s.roomIndexLocked(in.RoomID) < 0 {
		s.mu.Unlock()
		return storage.Chore{}, validationf("room %q does not exist", in.RoomID)
	}
	s.state.Chores = append(s.state.Chores, c)
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.log.Info("chore added",
		logx.String("chore_id", c.ID),
		logx.String("name", c.Name),
		logx.Stringer("next_due", c.NextDue),
		logx.String("recurrence_type", string(c.RecurrenceType)),
		logx.String("assigned_to", c.AssignedTo),
	)
	s.changed(ctx, eventbus.ChoreAdded, c.Clone())
	return c.Clone(), nil
}

func (s *Service) UpdateChore(ctx context.Context, id string, up ChoreUpdate) (storage.Chore, error) {
	if up.Name != nil {
		name, err := validateName("chore", *up.Name, MaxChoreNameLength)
		if err != nil {
			return storage.Chore{}, err
		}
		up.Name = &name
	}
	if up.RoomID != nil {
		if err := validRoomID(*up.RoomID); err != nil {
			return storage.Chore{}, err
		}
	}
	if up.Interval != nil && *up.Interval < 1 {
		return storage.Chore{}, recurrence.ErrInvalidInterval
	}

	s.mu.Lock()
	i := s.choreIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Chore{}, notFound("chore", id)
	}
	if up.RoomID != nil && s.roomIndexLocked(*up.RoomID) < 0 {
		s.mu.Unlock()
		return storage.Chore{}, validationf("room %q does not exist", *up.RoomID)
	}

	c := s.state.Chores[i].Clone()
	applyUpdate(&c, up)
	c.Config = c.Config.Normalize()
	if err := c.Config.Validate(); err != nil {
		s.mu.Unlock()
		return storage.Chore{}, err
	}
	s.state.Chores[i] = c
	_ = s.commitLocked(ctx, false)
	s.mu.Unlock()

	s.changed(ctx, eventbus.ChoreUpdated, c.Clone())
	return c.Clone(), nil
}

func applyUpdate(c *storage.Chore, up ChoreUpdate) {
	if up.Name != nil {
		c.Name = *up.Name
	}
	if up.RoomID != nil {
		c.RoomID = *up.RoomID
	}
	if up.NextDue != nil {
		c.NextDue = *up.NextDue
	}
	c.AssignedTo = up.AssignedTo
	if up.Frequency != nil {
		c.Frequency = *up.Frequency
	}
	if up.RecurrenceType != nil {
		c.RecurrenceType = *up.RecurrenceType
	}
	if up.Interval != nil {
		c.Interval = *up.Interval
	}
	if up.AnchorDaysOfWeek != nil {
		c.AnchorDaysOfWeek = append([]time.Weekday(nil), up.AnchorDaysOfWeek...)
	}
	if up.AnchorType != nil {
		c.AnchorType = *up.AnchorType
	}
	if up.AnchorDayOfMonth != nil {
		v := *up.AnchorDayOfMonth
		c.AnchorDayOfMonth = &v
	}
	if up.AnchorWeek != nil {
		v := *up.AnchorWeek
		c.AnchorWeek = &v
	}
	if up.AnchorWeekday != nil {
		v := *up.AnchorWeekday
		c.AnchorWeekday = &v
	}
}

func (s *Service) RemoveChore(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.choreIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound("chore", id)
	}
	c := s.state.Chores[i]
	s.state.Chores = append(s.state.Chores[:i], s.state.Chores[i+1:]...)
	err := s.commitLocked(ctx, true)
	s.mu.Unlock()

	s.log.Info("chore removed", logx.String("chore_id", id), logx.String("name", c.Name))
	s.changed(ctx, eventbus.ChoreRemoved, c)
	return err
}

// CompleteChore records a completion by userID ("unknown" when empty) and
// reschedules from today. A one-off chore is marked completed for good.
func (s *Service) CompleteChore(ctx context.Context, id, userID string) (storage.Chore, error) {
	if userID == "" {
		userID = unknownUser
	}
	now := s.clock.Now()
	today := recurrence.DateOf(now)

	s.mu.Lock()
	i := s.choreIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Chore{}, notFound("chore", id)
	}
	c := &s.state.Chores[i]
	c.LastCompleted = today
	c.LastCompletedBy = userID
	if next, ok := recurrence.NextDueForChore(c.Config, today); ok {
		c.NextDue = next
		c.IsCompleted = false
	} else {
		c.IsCompleted = true
	}

	userName := s.userNameLocked(userID)
	s.state.History = append(s.state.History, storage.HistoryEntry{
		ID:              s.newID(),
		ChoreID:         c.ID,
		ChoreName:       c.Name,
		CompletedAt:     now,
		CompletedBy:     userID,
		CompletedByName: userName,
	})
	if over := len(s.state.History) - MaxHistoryEntries; over > 0 {
		s.state.History = append([]storage.HistoryEntry(nil), s.state.History[over:]...)
	}
	out := c.Clone()
	err := s.commitLocked(ctx, true)
	s.mu.Unlock()

	s.log.Info("chore completed",
		logx.String("chore_id", out.ID),
		logx.String("name", out.Name),
		logx.String("by", userName),
		logx.Stringer("next_due", out.NextDue),
		logx.Bool("done_for_good", out.IsCompleted),
	)
	s.changed(ctx, eventbus.ChoreCompleted, out)
	return out, err
}

// SkipChore moves the chore to its next occurrence after the current due
// date without recording a completion. One-off chores keep their date.
func (s *Service) SkipChore(ctx context.Context, id string) (storage.Chore, error) {
	s.mu.Lock()
	i := s.choreIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Chore{}, notFound("chore", id)
	}
	c := &s.state.Chores[i]
	if next, ok := recurrence.NextDueForChore(c.Config, c.NextDue); ok {
		c.NextDue = next
	}
	out := c.Clone()
	err := s.commitLocked(ctx, true)
	s.mu.Unlock()

	s.log.Info("chore skipped", logx.String("chore_id", id), logx.Stringer("next_due", out.NextDue))
	s.changed(ctx, eventbus.ChoreSkipped, out)
	return out, err
}

// SnoozeChore postpones the chore by one day.
func (s *Service) SnoozeChore(ctx context.Context, id string) (storage.Chore, error) {
	s.mu.Lock()
	i := s.choreIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Chore{}, notFound("chore", id)
	}
	c := &s.state.Chores[i]
	from := c.NextDue
	c.NextDue = from.AddDays(1)
	out := c.Clone()
	err := s.commitLocked(ctx, true)
	s.mu.Unlock()

	s.log.Info("chore snoozed", logx.String("chore_id", id), logx.Stringer("from", from), logx.Stringer("to", out.NextDue))
	s.changed(ctx, eventbus.ChoreSnoozed, out)
	return out, err
}

func (s *Service) Chore(id string) (storage.Chore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.choreIndexLocked(id)
	if i < 0 {
		return storage.Chore{}, notFound("chore", id)
	}
	return s.state.Chores[i].Clone(), nil
}

// Chores returns every chore, including completed one-off chores.
func (s *Service) Chores() []storage.Chore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.Chore, len(s.state.Chores))
	for i, c := range s.state.Chores {
		out[i] = c.Clone()
	}
	return out
}

func (s *Service) choreIndexLocked(id string) int {
	for i, c := range s.state.Chores {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// History returns completions of choreID, or all completions when choreID is
// empty, oldest first.
func (s *Service) History(choreID string) []storage.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.HistoryEntry
	for _, h := range s.state.History {
		if choreID == "" || h.ChoreID == choreID {
			out = append(out, h)
		}
	}
	return out
}

// UserStats counts completions per user, most active first.
func (s *Service) UserStats() []UserStat {
	s.mu.RLock()
	byID := map[string]*UserStat{}
	var order []string
	for _, h := range s.state.History {
		st, ok := byID[h.CompletedBy]
		if !ok {
			st = &UserStat{UserID: h.CompletedBy, UserName: h.CompletedByName}
			byID[h.CompletedBy] = st
			order = append(order, h.CompletedBy)
		}
		st.TotalCompleted++
		if h.CompletedAt.After(st.LastCompleted) {
			st.LastCompleted = h.CompletedAt
		}
	}
	s.mu.RUnlock()

	out := make([]UserStat, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalCompleted > out[j].TotalCompleted })
	return out
}
