package reportrun

import (
	"time"

	"github.com/finvue/finvue/internal/reportrun/domain"
)

// Boundary predicates look at the hour and minute of the UTC reference
// instant only, so a run loop that fires once per minute observes each
// boundary exactly once regardless of seconds or sub-second jitter.

// IsStartOfMonth reports whether ref falls on the first minute of a UTC month.
func IsStartOfMonth(ref time.Time) bool {
	ref = ref.UTC()
	return ref.Day() == 1 && ref.Hour() == 0 && ref.Minute() == 0
}

// IsStartOfQuarter reports whether ref falls on the first minute of a UTC
// calendar quarter (January, April, July or October).
func IsStartOfQuarter(ref time.Time) bool {
	return IsStartOfMonth(ref) && (int(ref.UTC().Month())-1)%3 == 0
}

// IsStartOfYear reports whether ref falls on the first minute of January 1st UTC.
func IsStartOfYear(ref time.Time) bool {
	return IsStartOfMonth(ref) && ref.UTC().Month() == time.January
}

// PreviousWeekRange returns the Monday 00:00:00 through Sunday 23:59:59 UTC
// week preceding the week containing ref.
func PreviousWeekRange(ref time.Time) domain.Interval {
	ref = ref.UTC()
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	monday := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysSinceMonday-7)
	return domain.Interval{
		Start: monday.Unix(),
		End:   endOfDay(monday.AddDate(0, 0, 6)),
	}
}

// PreviousMonthRange returns the full UTC calendar month before the one
// containing ref.
func PreviousMonthRange(ref time.Time) domain.Interval {
	ref = ref.UTC()
	start := time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(ref.Year(), ref.Month(), 0, 0, 0, 0, 0, time.UTC)
	return domain.Interval{Start: start.Unix(), End: endOfDay(last)}
}

// PreviousQuarterRange returns the full UTC calendar quarter before the one
// containing ref. For a reference in Q1 that is the previous year's Q4.
func PreviousQuarterRange(ref time.Time) domain.Interval {
	ref = ref.UTC()
	qStart := time.Month(((int(ref.Month())-1)/3)*3 + 1)
	start := time.Date(ref.Year(), qStart-3, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(ref.Year(), qStart, 0, 0, 0, 0, 0, time.UTC)
	return domain.Interval{Start: start.Unix(), End: endOfDay(last)}
}

// PreviousYearRange returns the full UTC calendar year before the one
// containing ref.
func PreviousYearRange(ref time.Time) domain.Interval {
	ref = ref.UTC()
	start := time.Date(ref.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(ref.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	return domain.Interval{Start: start.Unix(), End: endOfDay(last)}
}

// intervalFor maps a cadence to its previous-period range relative to ref.
func intervalFor(cadence domain.Cadence, ref time.Time) domain.Interval {
	switch cadence {
	case domain.CadenceWeekly:
		return PreviousWeekRange(ref)
	case domain.CadenceMonthly:
		return PreviousMonthRange(ref)
	case domain.CadenceQuarterly:
		return PreviousQuarterRange(ref)
	default:
		return PreviousYearRange(ref)
	}
}

func endOfDay(day time.Time) int64 {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC).Unix()
}
