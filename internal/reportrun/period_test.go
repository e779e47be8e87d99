package reportrun

import (
	"testing"
	"time"

	"github.com/finvue/finvue/internal/reportrun/domain"
	"github.com/stretchr/testify/assert"
)

func utc(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func TestBoundaryPredicates(t *testing.T) {
	cases := []struct {
		name    string
		ref     time.Time
		month   bool
		quarter bool
		year    bool
	}{
		{"quarter boundary", utc(2025, time.April, 1, 0, 0, 0), true, true, false},
		{"quarter boundary with seconds", utc(2025, time.April, 1, 0, 0, 30), true, true, false},
		{"one minute past boundary", utc(2025, time.April, 1, 0, 1, 0), false, false, false},
		{"year boundary", utc(2025, time.January, 1, 0, 0, 59), true, true, true},
		{"plain month boundary", utc(2025, time.May, 1, 0, 0, 0), true, false, false},
		{"july quarter boundary", utc(2025, time.July, 1, 0, 0, 0), true, true, false},
		{"october quarter boundary", utc(2025, time.October, 1, 0, 0, 0), true, true, false},
		{"mid month", utc(2025, time.April, 15, 0, 0, 0), false, false, false},
		{"first day at one am", utc(2025, time.April, 1, 1, 0, 0), false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.month, IsStartOfMonth(tc.ref))
			assert.Equal(t, tc.quarter, IsStartOfQuarter(tc.ref))
			assert.Equal(t, tc.year, IsStartOfYear(tc.ref))
		})
	}
}

func TestPreviousWeekRange(t *testing.T) {
	// Tuesday April 1st 2025; the previous ISO week is March 24-30.
	got := PreviousWeekRange(utc(2025, time.April, 1, 0, 0, 0))
	assert.Equal(t, utc(2025, time.March, 24, 0, 0, 0).Unix(), got.Start)
	assert.Equal(t, utc(2025, time.March, 30, 23, 59, 59).Unix(), got.End)
}

func TestPreviousWeekRange_SundayCountsAsEndOfWeek(t *testing.T) {
	// Sunday belongs to the week started the previous Monday, so a Sunday
	// reference must not slide the window forward.
	got := PreviousWeekRange(utc(2025, time.April, 6, 12, 0, 0))
	assert.Equal(t, utc(2025, time.March, 24, 0, 0, 0).Unix(), got.Start)
	assert.Equal(t, utc(2025, time.March, 30, 23, 59, 59).Unix(), got.End)
}

func TestPreviousWeekRange_SpanIsConstant(t *testing.T) {
	refs := []time.Time{
		utc(2025, time.April, 1, 0, 0, 0),
		utc(2025, time.April, 6, 23, 59, 59),
		utc(2024, time.February, 29, 8, 30, 0),
		utc(2025, time.January, 1, 0, 0, 0),
	}
	for _, ref := range refs {
		got := PreviousWeekRange(ref)
		assert.Equal(t, int64(604799), got.End-got.Start, "ref %s", ref)
	}
}

func TestPreviousMonthRange(t *testing.T) {
	cases := []struct {
		name  string
		ref   time.Time
		start time.Time
		end   time.Time
	}{
		{
			"march",
			utc(2025, time.April, 1, 0, 0, 0),
			utc(2025, time.March, 1, 0, 0, 0),
			utc(2025, time.March, 31, 23, 59, 59),
		},
		{
			"leap february",
			utc(2024, time.March, 15, 10, 0, 0),
			utc(2024, time.February, 1, 0, 0, 0),
			utc(2024, time.February, 29, 23, 59, 59),
		},
		{
			"non leap february",
			utc(2023, time.March, 15, 10, 0, 0),
			utc(2023, time.February, 1, 0, 0, 0),
			utc(2023, time.February, 28, 23, 59, 59),
		},
		{
			"january wraps to december",
			utc(2025, time.January, 10, 0, 0, 0),
			utc(2024, time.December, 1, 0, 0, 0),
			utc(2024, time.December, 31, 23, 59, 59),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PreviousMonthRange(tc.ref)
			assert.Equal(t, tc.start.Unix(), got.Start)
			assert.Equal(t, tc.end.Unix(), got.End)
		})
	}
}

func TestPreviousQuarterRange(t *testing.T) {
	got := PreviousQuarterRange(utc(2025, time.April, 1, 0, 0, 0))
	assert.Equal(t, utc(2025, time.January, 1, 0, 0, 0).Unix(), got.Start)
	assert.Equal(t, utc(2025, time.March, 31, 23, 59, 59).Unix(), got.End)
}

func TestPreviousQuarterRange_FirstQuarterWrapsToPriorYear(t *testing.T) {
	got := PreviousQuarterRange(utc(2025, time.February, 10, 0, 0, 0))
	assert.Equal(t, utc(2024, time.October, 1, 0, 0, 0).Unix(), got.Start)
	assert.Equal(t, utc(2024, time.December, 31, 23, 59, 59).Unix(), got.End)
}

func TestPreviousYearRange(t *testing.T) {
	got := PreviousYearRange(utc(2025, time.April, 1, 0, 0, 0))
	assert.Equal(t, utc(2024, time.January, 1, 0, 0, 0).Unix(), got.Start)
	assert.Equal(t, utc(2024, time.December, 31, 23, 59, 59).Unix(), got.End)
}

func TestRangesAreIdempotent(t *testing.T) {
	ref := utc(2025, time.April, 1, 0, 0, 0)
	for _, cadence := range []domain.Cadence{
		domain.CadenceWeekly, domain.CadenceMonthly, domain.CadenceQuarterly, domain.CadenceYearly,
	} {
		first := intervalFor(cadence, ref)
		second := intervalFor(cadence, ref)
		assert.Equal(t, first, second, "cadence %s", cadence)
	}
}

func TestRangesIgnoreLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	ref := utc(2025, time.April, 1, 0, 0, 0)
	assert.Equal(t, PreviousMonthRange(ref), PreviousMonthRange(ref.In(jakarta)))
	assert.Equal(t, PreviousWeekRange(ref), PreviousWeekRange(ref.In(jakarta)))
}
