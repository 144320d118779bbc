package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidHorizon is returned for a horizon shorter than one month
var ErrInvalidHorizon = errors.New("calendar: horizon must be at least one month")

// Horizon is the set of weekly shift dates between two month boundaries
type Horizon struct {
	First time.Time
	Last  time.Time
	// End is the first day of the month after the horizon (exclusive bound)
	End   time.Time
	Dates []time.Time
}

// Len returns the number of shift dates
func (h Horizon) Len() int {
	return len(h.Dates)
}

// StartMonth returns the first day of the month the horizon starts in.
// Dates are normalised to UTC midnight; time zones are not taken into account.
func StartMonth(ref time.Time, includeCurrentMonth bool) time.Time {
	month := ref.Month()
	if !includeCurrentMonth {
		month++
	}
	// time.Date normalises month 13 into January of the next year
	return time.Date(ref.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

// NextWeekday returns the first occurrence of wd on or after day
func NextWeekday(day time.Time, wd time.Weekday) time.Time {
	offset := (int(wd) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

// Sequence computes the weekly shift dates for a horizon of months whole months.
// The first date is the first wd on or after the start month's first day and the
// last date is the last wd on or before the final day of the last month.
func Sequence(ref time.Time, includeCurrentMonth bool, months int, wd time.Weekday) (Horizon, error) {
	if months < 1 {
		return Horizon{}, fmt.Errorf("%w: got %d", ErrInvalidHorizon, months)
	}

	start := StartMonth(ref, includeCurrentMonth)
	end := start.AddDate(0, months, 0)
	first := NextWeekday(start, wd)

	// UTC midnight to UTC midnight, so the span is a whole number of days
	days := int(end.Sub(first).Hours() / 24)
	weeks := (days + 6) / 7

	dates := make([]time.Time, 0, weeks)
	for w := 0; w < weeks; w++ {
		dates = append(dates, first.AddDate(0, 0, 7*w))
	}

	return Horizon{
		First: first,
		Last:  dates[len(dates)-1],
		End:   end,
		Dates: dates,
	}, nil
}
