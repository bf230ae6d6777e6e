package chores

import (
	"errors"
	"fmt"
	"time"

	"chorebot/internal/recurrence"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

const (
	MaxChoreNameLength = 100
	MaxRoomNameLength  = 50
	MaxHistoryEntries  = 1000

	RoomPrefixArea   = "area_"
	RoomPrefixCustom = "custom_"
	UserPrefixCustom = "custom_user_"

	defaultRoomIcon   = "mdi:home"
	defaultUserAvatar = "mdi:account"
	unknownRoomName   = "Unknown Room"
	unknownUser       = "unknown"
)

// ChoreInput describes a new chore. A zero StartDate means today.
type ChoreInput struct {
	Name       string
	RoomID     string
	StartDate  recurrence.Date
	AssignedTo string
	recurrence.Config
}

// ChoreUpdate is a partial update; nil fields are left alone. AssignedTo is
// always written, so an empty value unassigns the chore.
type ChoreUpdate struct {
	Name       *string
	RoomID     *string
	NextDue    *recurrence.Date
	AssignedTo string

	Frequency        *recurrence.Frequency
	RecurrenceType   *recurrence.RecurrenceType
	Interval         *int
	AnchorDaysOfWeek []time.Weekday
	AnchorType       *recurrence.AnchorType
	AnchorDayOfMonth *int
	AnchorWeek       *int
	AnchorWeekday    *time.Weekday
}

// UserStat summarizes one person's completions.
type UserStat struct {
	UserID         string
	UserName       string
	TotalCompleted int
	LastCompleted  time.Time
}
