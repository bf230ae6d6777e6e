package recurrence

import (
	"errors"
	"fmt"
)

// Configuration errors. Calculations never return these; they come from
// Config.Validate when a chore is created or updated.
var (
	ErrInvalidFrequency      = errors.New("invalid frequency")
	ErrInvalidRecurrenceType = errors.New("invalid recurrence type")
	ErrInvalidInterval       = errors.New("interval must be at least 1")
	ErrMissingAnchorDays     = errors.New("weekly anchored recurrence requires anchor_days_of_week")
	ErrInvalidWeekday        = errors.New("invalid weekday")
	ErrMissingAnchorType     = errors.New("monthly anchored recurrence requires anchor_type")
	ErrInvalidAnchorType     = errors.New("invalid anchor type")
	ErrInvalidDayOfMonth     = errors.New("anchor_day_of_month must be between 1 and 31")
	ErrInvalidAnchorWeek     = errors.New("invalid anchor_week")
)

func invalidf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

var configErrors = []error{
	ErrInvalidFrequency, ErrInvalidRecurrenceType, ErrInvalidInterval,
	ErrMissingAnchorDays, ErrInvalidWeekday, ErrMissingAnchorType,
	ErrInvalidAnchorType, ErrInvalidDayOfMonth, ErrInvalidAnchorWeek,
}

// IsConfigError reports whether err wraps one of the configuration errors
// above.
func IsConfigError(err error) bool {
	for _, e := range configErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
