package recurrence

// NextDue advances from by one period of f.
//
// ok is false for Once (a one-off chore has no next occurrence). An unknown
// frequency returns from unchanged so that enumerating legacy records never
// fails.
func NextDue(from Date, f Frequency) (next Date, ok bool) {
	switch f {
	case Once:
		return Date{}, false
	case Daily:
		return from.AddDays(1), true
	case Weekly:
		return from.AddDays(7), true
	case Biweekly:
		return from.AddDays(14), true
	case Monthly:
		return from.AddMonths(1), true
	case Bimonthly:
		return from.AddMonths(2), true
	case Quarterly:
		return from.AddMonths(3), true
	case Biannual:
		return from.AddMonths(6), true
	case Yearly:
		return from.AddYears(1), true
	default:
		return from, true
	}
}
