package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRoster is matched by every *EmptyRosterError
	ErrEmptyRoster = errors.New("empty roster")

	// ErrNotEnoughDistinctMembers is matched by every *NotEnoughDistinctMembersError
	ErrNotEnoughDistinctMembers = errors.New("not enough distinct members")

	// ErrFinished is returned by NextShift once the scheduler has stopped
	ErrFinished = errors.New("scheduler finished")
)

// EmptyRosterError is returned when there are no entries to schedule
type EmptyRosterError struct {
	Source string
}

func (e *EmptyRosterError) Error() string {
	if e.Source == "" {
		return "empty roster: no entries to schedule"
	}
	return fmt.Sprintf("empty roster: no entries in %s", e.Source)
}

func (e *EmptyRosterError) Is(target error) bool {
	return target == ErrEmptyRoster
}

// NotEnoughDistinctMembersError is returned when no shift can be filled
// without reusing a recently assigned member
type NotEnoughDistinctMembersError struct {
	Entries        int
	Members        int
	WindowCapacity int
	ShiftSize      int
	// ShiftIndex is the zero-based shift that could not be filled
	ShiftIndex int
	Assigned   int
}

func (e *NotEnoughDistinctMembersError) Error() string {
	return fmt.Sprintf("not enough distinct members for shift %d: %d members in %d entries, shift size %d, recency window %d (%d assigned before stalling)",
		e.ShiftIndex+1, e.Members, e.Entries, e.ShiftSize, e.WindowCapacity, e.Assigned)
}

func (e *NotEnoughDistinctMembersError) Is(target error) bool {
	return target == ErrNotEnoughDistinctMembers
}
