package models

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects how the roster is reordered between rotation cycles
type Strategy int

const (
	// StrategyRandom shuffles every pool refill and the order inside each shift
	StrategyRandom Strategy = 1
	// StrategyOrdered keeps roster order and never shuffles
	StrategyOrdered Strategy = 2
)

func (s Strategy) String() string {
	switch s {
	case StrategyRandom:
		return "random"
	case StrategyOrdered:
		return "ordered"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Valid reports whether s is a known strategy
func (s Strategy) Valid() bool {
	return s == StrategyRandom || s == StrategyOrdered
}

// ParseStrategy accepts "1"/"2" (the historical CLI values) or the names
func ParseStrategy(v string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "random":
		return StrategyRandom, nil
	case "2", "ordered":
		return StrategyOrdered, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", v)
}

// Entry is one roster line: a single member or a group that is always assigned together
type Entry struct {
	Line    int      `json:"line"`
	Members []string `json:"members"`
}

// Size returns the number of individual members in the entry
func (e Entry) Size() int {
	return len(e.Members)
}

// IsGroup reports whether the entry holds more than one member
func (e Entry) IsGroup() bool {
	return len(e.Members) > 1
}

func (e Entry) String() string {
	return strings.Join(e.Members, ",")
}

// Shift is the ordered set of members assigned to one date
type Shift struct {
	Date    time.Time `json:"date"`
	Members []string  `json:"members"`
}

// Schedule is the ordered list of shifts produced by one engine run
type Schedule []Shift

// First returns the date of the first shift, or the zero time when empty
func (s Schedule) First() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Date
}

// Last returns the date of the last shift, or the zero time when empty
func (s Schedule) Last() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}

// Counts returns how often every member was assigned
func (s Schedule) Counts() map[string]int {
	counts := make(map[string]int)
	for _, sh := range s {
		for _, m := range sh.Members {
			counts[m]++
		}
	}
	return counts
}

// ScheduleInput is the data structure for the scheduling endpoint
type ScheduleInput struct {
	Roster              []string `json:"roster"`
	Context             []string `json:"context"`
	Months              int      `json:"months"`
	Strategy            Strategy `json:"strategy"`
	IncludeCurrentMonth bool     `json:"include_current_month"`
	ShiftSize           int      `json:"shift_size,omitempty"`
	ContextSize         *int     `json:"context_size,omitempty"`
	Seed                int64    `json:"seed,omitempty"`
	// ReferenceDate overrides "now" when computing the horizon (YYYY-MM-DD)
	ReferenceDate string `json:"reference_date,omitempty"`
}

// ShiftRecord is the wire form of a shift
type ShiftRecord struct {
	Date    string   `json:"date"`
	Members []string `json:"members"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	FirstShift    string         `json:"first_shift"`
	LastShift     string         `json:"last_shift"`
	FileName      string         `json:"file_name"`
	Strategy      string         `json:"strategy"`
	Shifts        []ShiftRecord  `json:"shifts"`
	Carryover     []string       `json:"carryover"`
	FairnessScore float64        `json:"fairness_score"`
	Members       map[string]int `json:"members"` // name -> number of shifts
}
