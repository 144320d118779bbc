package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/roster"
)

// State is the position of the scheduler in its assignment cycle
type State int

const (
	// StateIdle means the pool holds less than one shift's worth of entries
	StateIdle State = iota
	// StateReady means the pool can serve at least one shift without a refill
	StateReady
	// StateAssigning is held while entries are being selected for a shift
	StateAssigning
	// StateDone is terminal after Generate has produced every shift
	StateDone
	// StateFailed is terminal after a fatal assignment error
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateAssigning:
		return "assigning"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Options configures a Scheduler
type Options struct {
	ShiftSize   int
	ContextSize int
	Strategy    models.Strategy
	// Context pre-populates the recency window, oldest first
	Context []string
	// Rand drives every shuffle. Nil means a time seeded source.
	Rand *rand.Rand
}

// Stats counts what the scheduler did during a run
type Stats struct {
	Shifts      int
	Refills     int
	Deferrals   int
	StallRefill int
}

// Scheduler handles the logic of assigning duty members to shifts.
// A Scheduler is single use and not safe for concurrent use.
type Scheduler struct {
	entries   []models.Entry
	pool      []int // indexes into entries
	window    *Window
	shiftSize int
	strategy  models.Strategy
	rng       *rand.Rand
	members   []string

	state State
	err   error
	stats Stats
}

// NewScheduler creates a new scheduler instance. The entries are validated
// against the shift size and must hold at least one shift's worth of members.
func NewScheduler(entries []models.Entry, opts Options) (*Scheduler, error) {
	if opts.ShiftSize < 1 {
		return nil, errors.New("scheduler: shift size must be positive")
	}
	if !opts.Strategy.Valid() {
		opts.Strategy = models.StrategyRandom
	}
	if len(entries) == 0 {
		return nil, &EmptyRosterError{}
	}
	if err := roster.Validate(entries, opts.ShiftSize); err != nil {
		return nil, err
	}

	var members []string
	for _, e := range entries {
		members = append(members, e.Members...)
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Scheduler{
		entries:   append([]models.Entry(nil), entries...),
		window:    NewWindow(opts.ContextSize, opts.Context),
		shiftSize: opts.ShiftSize,
		strategy:  opts.Strategy,
		rng:       opts.Rand,
		members:   members,
		state:     StateIdle,
	}

	if len(members) < opts.ShiftSize {
		return nil, s.stalled(0)
	}
	return s, nil
}

// State returns the current state
func (s *Scheduler) State() State { return s.state }

// Stats returns the counters for the run so far
func (s *Scheduler) Stats() Stats { return s.stats }

// Members returns every individual member on the roster, in roster order
func (s *Scheduler) Members() []string {
	return append([]string(nil), s.members...)
}

// Carryover returns the recency window, oldest first. It can seed the next run.
func (s *Scheduler) Carryover() []string {
	return s.window.Names()
}

func (s *Scheduler) stalled(assigned int) error {
	return &NotEnoughDistinctMembersError{
		Entries:        len(s.entries),
		Members:        len(s.members),
		WindowCapacity: s.window.Cap(),
		ShiftSize:      s.shiftSize,
		ShiftIndex:     s.stats.Shifts,
		Assigned:       assigned,
	}
}

// shuffled returns a copy of idx, shuffled when the strategy is random
func (s *Scheduler) shuffled(idx []int) []int {
	out := append([]int(nil), idx...)
	if s.strategy == models.StrategyRandom {
		s.rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	return out
}

// refill appends a fresh copy of the roster behind the remaining entries
func (s *Scheduler) refill() {
	all := make([]int, len(s.entries))
	for i := range all {
		all[i] = i
	}
	s.pool = append(s.pool, s.shuffled(all)...)
	s.stats.Refills++
}

// missing returns the roster entries that are not in the pool
func (s *Scheduler) missing() []int {
	inPool := make([]bool, len(s.entries))
	for _, i := range s.pool {
		inPool[i] = true
	}
	var out []int
	for i, ok := range inPool {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

func (s *Scheduler) collides(e models.Entry, pending map[string]bool) bool {
	for _, m := range e.Members {
		if pending[m] || s.window.Contains(m) {
			return true
		}
	}
	return false
}

// NextShift selects the members for the next shift.
//
// Entries are taken from the head of the pool. An entry that has a member in
// the recency window or in the pending shift, or that does not fit the
// remaining slots, is moved to the tail. When a whole pass over the pool
// defers every entry, the entries the pool lacks are appended once; a second
// stalled pass fails with *NotEnoughDistinctMembersError.
func (s *Scheduler) NextShift() ([]string, error) {
	switch s.state {
	case StateDone:
		return nil, ErrFinished
	case StateFailed:
		return nil, s.err
	}

	if len(s.pool) < s.shiftSize {
		s.refill()
	}
	s.state = StateAssigning

	shift := make([]string, 0, s.shiftSize)
	pending := make(map[string]bool, s.shiftSize)
	deferred := 0
	stallRefilled := false

	for len(shift) < s.shiftSize {
		if len(s.pool) == 0 {
			s.refill()
		}
		if deferred >= len(s.pool) {
			extra := s.missing()
			if stallRefilled || len(extra) == 0 {
				s.state = StateFailed
				s.err = s.stalled(len(shift))
				return nil, s.err
			}
			s.pool = append(s.pool, s.shuffled(extra)...)
			s.stats.StallRefill++
			stallRefilled = true
			deferred = 0
		}

		i := s.pool[0]
		s.pool = s.pool[1:]
		e := s.entries[i]

		if e.Size() > s.shiftSize-len(shift) || s.collides(e, pending) {
			s.pool = append(s.pool, i)
			deferred++
			s.stats.Deferrals++
			continue
		}

		for _, m := range e.Members {
			pending[m] = true
		}
		shift = append(shift, e.Members...)
		deferred = 0
	}

	// The window is checked as it stood when the shift started
	s.window.Record(shift...)

	if s.strategy == models.StrategyRandom {
		s.rng.Shuffle(len(shift), func(i, j int) {
			shift[i], shift[j] = shift[j], shift[i]
		})
	}

	s.stats.Shifts++
	if len(s.pool) < s.shiftSize {
		s.state = StateIdle
	} else {
		s.state = StateReady
	}
	return shift, nil
}

// Generate assigns one shift to every date. Nothing is returned on failure.
func (s *Scheduler) Generate(dates []time.Time) (models.Schedule, error) {
	schedule := make(models.Schedule, 0, len(dates))
	for _, d := range dates {
		members, err := s.NextShift()
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, models.Shift{Date: d, Members: members})
	}
	s.state = StateDone
	return schedule, nil
}

// CalculateFairnessScore returns a percentage (0-100) representing how evenly
// shifts are distributed over members. 100% is perfectly fair (Standard Deviation = 0).
func CalculateFairnessScore(members []string, schedule models.Schedule) float64 {
	if len(members) == 0 {
		return 100.0
	}

	counts := schedule.Counts()

	var sum float64
	for _, m := range members {
		sum += float64(counts[m])
	}

	if sum == 0 {
		return 100.0 // Nobody assigned is perfectly fair
	}

	mean := sum / float64(len(members))

	var varianceSum float64
	for _, m := range members {
		diff := float64(counts[m]) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(members)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
