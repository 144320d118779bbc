package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/roster"
)

func entries(lines ...string) []models.Entry {
	return roster.Parse(lines, ",")
}

func singles(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("m%02d", i+1)
	}
	return out
}

func dates(n int) []time.Time {
	start := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, 7*i)
	}
	return out
}

func TestNextShift_Ordered(t *testing.T) {
	s, err := NewScheduler(entries("A", "B", "C", "D", "E", "F", "G", "H"), Options{
		ShiftSize:   4,
		ContextSize: 4,
		Strategy:    models.StrategyOrdered,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	want := [][]string{
		{"A", "B", "C", "D"},
		{"E", "F", "G", "H"},
		{"A", "B", "C", "D"},
	}
	for i, w := range want {
		got, err := s.NextShift()
		if err != nil {
			t.Fatalf("shift %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, w) {
			t.Errorf("shift %d: expected %v, got %v", i, w, got)
		}
	}

	if got := s.Carryover(); !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("Expected carryover A-D, got %v", got)
	}
}

func TestNextShift_ContextSeedIsAvoided(t *testing.T) {
	s, err := NewScheduler(entries("A", "B", "C", "D", "E", "F", "G", "H"), Options{
		ShiftSize:   4,
		ContextSize: 4,
		Strategy:    models.StrategyOrdered,
		Context:     []string{"X", "A", "B"},
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	got, err := s.NextShift()
	if err != nil {
		t.Fatalf("NextShift: %v", err)
	}
	if want := []string{"C", "D", "E", "F"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if s.Stats().Deferrals != 2 {
		t.Errorf("Expected 2 deferrals, got %d", s.Stats().Deferrals)
	}
}

func TestNextShift_GroupThatDoesNotFitIsDeferred(t *testing.T) {
	s, err := NewScheduler(entries("A", "B", "C", "D,E", "F", "G", "H"), Options{
		ShiftSize: 4,
		Strategy:  models.StrategyOrdered,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	got, _ := s.NextShift()
	if want := []string{"A", "B", "C", "F"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	got, _ = s.NextShift()
	if want := []string{"G", "H", "D", "E"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNextShift_StallRefillAppendsMissingEntries(t *testing.T) {
	// D,E never fits the single slot left after C, so the pass over the
	// pool stalls and the entries the pool lacks are appended in roster order.
	s, err := NewScheduler(entries("A", "B", "C", "D,E"), Options{
		ShiftSize: 2,
		Strategy:  models.StrategyOrdered,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	want := [][]string{
		{"A", "B"},
		{"C", "A"},
		{"B", "C"},
		{"D", "E"},
		{"A", "B"},
	}
	for i, w := range want {
		got, err := s.NextShift()
		if err != nil {
			t.Fatalf("shift %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, w) {
			t.Errorf("shift %d: expected %v, got %v", i, w, got)
		}
		if i == 1 && s.Stats().StallRefill != 1 {
			t.Errorf("Expected one stall refill by shift 2, got %d", s.Stats().StallRefill)
		}
	}
	if got := s.Stats().StallRefill; got != 1 {
		t.Errorf("Expected exactly one stall refill, got %d", got)
	}
}

func TestNextShift_SecondStallFails(t *testing.T) {
	s, err := NewScheduler(entries("A,B", "C,D"), Options{
		ShiftSize: 3,
		Strategy:  models.StrategyOrdered,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	got, err := s.NextShift()
	if got != nil {
		t.Errorf("Expected no shift, got %v", got)
	}
	var nerr *NotEnoughDistinctMembersError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expected NotEnoughDistinctMembersError, got %v", err)
	}
	if nerr.ShiftIndex != 0 || nerr.Assigned != 2 {
		t.Errorf("Expected failure at shift 0 after 2 names, got shift %d after %d", nerr.ShiftIndex, nerr.Assigned)
	}
	if st := s.Stats(); st.StallRefill != 1 {
		t.Errorf("Expected the stall refill to be tried once, got %d", st.StallRefill)
	}
	if s.State() != StateFailed {
		t.Errorf("Expected failed state, got %s", s.State())
	}
}
func TestNewScheduler_EmptyRoster(t *testing.T) {
	_, err := NewScheduler(nil, Options{ShiftSize: 4, ContextSize: 8})
	if !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("Expected ErrEmptyRoster, got %v", err)
	}
	var er *EmptyRosterError
	if !errors.As(err, &er) {
		t.Errorf("Expected *EmptyRosterError, got %T", err)
	}
}

func TestNewScheduler_TooFewMembers(t *testing.T) {
	for _, capacity := range []int{1, 4, 8} {
		_, err := NewScheduler(entries("A", "B", "C"), Options{ShiftSize: 4, ContextSize: capacity})
		var ne *NotEnoughDistinctMembersError
		if !errors.As(err, &ne) {
			t.Fatalf("capacity %d: expected *NotEnoughDistinctMembersError, got %v", capacity, err)
		}
		if ne.ShiftIndex != 0 || ne.Members != 3 || ne.WindowCapacity != capacity {
			t.Errorf("capacity %d: unexpected error context %+v", capacity, ne)
		}
	}
}

func TestNewScheduler_MalformedEntry(t *testing.T) {
	_, err := NewScheduler(entries("A,B,C,D,E", "F"), Options{ShiftSize: 4})
	if !errors.Is(err, roster.ErrMalformedEntry) {
		t.Fatalf("Expected ErrMalformedEntry, got %v", err)
	}
}

func TestGenerate_WindowTooLargeFailsWithoutPartialSchedule(t *testing.T) {
	s, err := NewScheduler(entries("A", "B", "C", "D", "E", "F"), Options{
		ShiftSize:   4,
		ContextSize: 4,
		Strategy:    models.StrategyOrdered,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	schedule, err := s.Generate(dates(4))
	if !errors.Is(err, ErrNotEnoughDistinctMembers) {
		t.Fatalf("Expected ErrNotEnoughDistinctMembers, got %v", err)
	}
	if schedule != nil {
		t.Errorf("Expected no schedule, got %d shifts", len(schedule))
	}
	var ne *NotEnoughDistinctMembersError
	if errors.As(err, &ne) && ne.ShiftIndex != 1 {
		t.Errorf("Expected failure on the second shift, got index %d", ne.ShiftIndex)
	}
	if s.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", s.State())
	}
	if _, again := s.NextShift(); again != err {
		t.Errorf("Expected the same error after failure, got %v", again)
	}
}

func TestGenerate_ShiftsAreDistinctAndRespectWindow(t *testing.T) {
	lines := append(singles(14), "p1,p2", "q1,q2", "r1,r2")
	s, err := NewScheduler(entries(lines...), Options{
		ShiftSize:   4,
		ContextSize: 8,
		Strategy:    models.StrategyRandom,
		Rand:        rand.New(rand.NewSource(42)),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	schedule, err := s.Generate(dates(120))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(schedule) != 120 {
		t.Fatalf("Expected 120 shifts, got %d", len(schedule))
	}

	groups := [][]string{{"p1", "p2"}, {"q1", "q2"}, {"r1", "r2"}}
	for i, sh := range schedule {
		if len(sh.Members) != 4 {
			t.Fatalf("shift %d: expected 4 members, got %v", i, sh.Members)
		}
		in := make(map[string]bool)
		for _, m := range sh.Members {
			if in[m] {
				t.Errorf("shift %d: %s assigned twice", i, m)
			}
			in[m] = true
		}

		// With capacity 8 and shift size 4 the window spans the two previous shifts
		for back := 1; back <= 2 && i-back >= 0; back++ {
			for _, m := range schedule[i-back].Members {
				if in[m] {
					t.Errorf("shift %d: %s repeated from shift %d", i, m, i-back)
				}
			}
		}

		for _, g := range groups {
			if in[g[0]] != in[g[1]] {
				t.Errorf("shift %d: group %v split: %v", i, g, sh.Members)
			}
		}
	}

	if s.State() != StateDone {
		t.Errorf("Expected state done, got %s", s.State())
	}
}

func TestGenerate_OrderedIsDeterministic(t *testing.T) {
	run := func() models.Schedule {
		s, err := NewScheduler(entries(append(singles(9), "g1,g2")...), Options{
			ShiftSize:   4,
			ContextSize: 4,
			Strategy:    models.StrategyOrdered,
		})
		if err != nil {
			t.Fatalf("NewScheduler: %v", err)
		}
		schedule, err := s.Generate(dates(30))
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return schedule
	}

	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("Expected identical schedules for the ordered strategy")
	}
}

func TestGenerate_RandomIsRoughlyUniform(t *testing.T) {
	members := singles(12)
	s, err := NewScheduler(entries(members...), Options{
		ShiftSize:   4,
		ContextSize: 4,
		Strategy:    models.StrategyRandom,
		Rand:        rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	schedule, err := s.Generate(dates(300))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 300 shifts * 4 slots / 12 members
	counts := schedule.Counts()
	for _, m := range members {
		if c := counts[m]; c < 85 || c > 115 {
			t.Errorf("%s assigned %d times, expected about 100", m, c)
		}
	}
	if score := CalculateFairnessScore(members, schedule); score < 90 {
		t.Errorf("Expected fairness score above 90, got %f", score)
	}
}

func TestCalculateFairnessScore(t *testing.T) {
	schedule := models.Schedule{
		{Members: []string{"A", "B"}},
		{Members: []string{"A", "B"}},
	}
	if score := CalculateFairnessScore([]string{"A", "B"}, schedule); score != 100.0 {
		t.Errorf("Expected 100, got %f", score)
	}
	if score := CalculateFairnessScore([]string{"A", "B", "C", "D"}, schedule); score != 0.0 {
		t.Errorf("Expected 0, got %f", score)
	}
	if score := CalculateFairnessScore(nil, schedule); score != 100.0 {
		t.Errorf("Expected 100 for no members, got %f", score)
	}
}
