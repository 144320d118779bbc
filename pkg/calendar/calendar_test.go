package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSequence_MonthStartingOnSunday(t *testing.T) {
	// 1 February 2026 is a Sunday and the month has exactly four
	h, err := Sequence(day(2026, time.February, 10), true, 1, time.Sunday)
	require.NoError(t, err)

	require.Equal(t, day(2026, time.February, 1), h.First)
	require.Equal(t, day(2026, time.February, 22), h.Last)
	require.Equal(t, day(2026, time.March, 1), h.End)
	require.Equal(t, []time.Time{
		day(2026, time.February, 1),
		day(2026, time.February, 8),
		day(2026, time.February, 15),
		day(2026, time.February, 22),
	}, h.Dates)
}

func TestSequence_EndBoundaryOnWeekdayIsExcluded(t *testing.T) {
	// 1 March 2026 is a Sunday but belongs to the month after the horizon
	h, err := Sequence(day(2026, time.January, 20), false, 1, time.Sunday)
	require.NoError(t, err)
	require.Equal(t, 4, h.Len())
	require.Equal(t, h.Dates[len(h.Dates)-1], h.Last)
	require.True(t, h.Last.Before(h.End))
}

func TestSequence_NextMonthMultiMonth(t *testing.T) {
	h, err := Sequence(day(2026, time.October, 14), false, 4, time.Sunday)
	require.NoError(t, err)

	require.Equal(t, day(2026, time.November, 1), h.First)
	require.Equal(t, day(2027, time.February, 28), h.Last)
	require.Equal(t, 18, h.Len())

	for i := 1; i < len(h.Dates); i++ {
		require.Equal(t, 7*24*time.Hour, h.Dates[i].Sub(h.Dates[i-1]))
	}
	for _, d := range h.Dates {
		require.Equal(t, time.Sunday, d.Weekday())
	}
}

func TestSequence_YearRollover(t *testing.T) {
	h, err := Sequence(day(2026, time.December, 5), false, 1, time.Sunday)
	require.NoError(t, err)
	require.Equal(t, day(2027, time.January, 3), h.First)
	require.Equal(t, day(2027, time.January, 31), h.Last)
	require.Equal(t, 5, h.Len())
}

func TestSequence_OtherWeekday(t *testing.T) {
	h, err := Sequence(day(2026, time.February, 1), true, 1, time.Wednesday)
	require.NoError(t, err)
	require.Equal(t, day(2026, time.February, 4), h.First)
	require.Equal(t, day(2026, time.February, 25), h.Last)
}

func TestSequence_InvalidHorizon(t *testing.T) {
	for _, months := range []int{0, -3} {
		_, err := Sequence(day(2026, time.February, 1), true, months, time.Sunday)
		require.True(t, errors.Is(err, ErrInvalidHorizon), "months=%d", months)
	}
}
