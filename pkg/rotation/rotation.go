package rotation

import (
	"math/rand"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/calendar"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/export"
	"github.com/arnavshah/duty-rotation-go/pkg/metrics"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
)

// Result is one completed schedule generation
type Result struct {
	Horizon   calendar.Horizon
	Schedule  models.Schedule
	Carryover []string
	Members   []string
	Stats     scheduler.Stats
	Fairness  float64
}

// Generate computes the shift dates for cfg and fills every one of them.
// Each call runs a fresh scheduler; on error no schedule is returned.
func Generate(cfg config.Config, entries []models.Entry, context []string, ref time.Time, reg *metrics.Registry) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	horizon, err := calendar.Sequence(ref, cfg.IncludeCurrentMonth, cfg.Months, cfg.Weekday)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	s, err := scheduler.NewScheduler(entries, scheduler.Options{
		ShiftSize:   cfg.ShiftSize,
		ContextSize: cfg.ContextSize,
		Strategy:    cfg.Strategy,
		Context:     context,
		Rand:        rand.New(rand.NewSource(seed)),
	})
	if err != nil {
		reg.Observe(cfg.Strategy.String(), scheduler.Stats{}, time.Since(start), err)
		return nil, err
	}

	schedule, err := s.Generate(horizon.Dates)
	reg.Observe(cfg.Strategy.String(), s.Stats(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	members := s.Members()
	return &Result{
		Horizon:   horizon,
		Schedule:  schedule,
		Carryover: s.Carryover(),
		Members:   members,
		Stats:     s.Stats(),
		Fairness:  scheduler.CalculateFairnessScore(members, schedule),
	}, nil
}

// Response builds the API representation of a result
func (r *Result) Response(cfg config.Config) models.ScheduleResponse {
	e := export.Exporter{Dir: cfg.OutputDir, Prefix: cfg.OutputPrefix, MonthNames: cfg.MonthNames}

	counts := r.Schedule.Counts()
	members := make(map[string]int, len(r.Members))
	for _, m := range r.Members {
		members[m] = counts[m]
	}

	return models.ScheduleResponse{
		FirstShift:    r.Horizon.First.Format("2006-01-02"),
		LastShift:     r.Horizon.Last.Format("2006-01-02"),
		FileName:      e.FileName(r.Horizon.First, r.Horizon.Last, export.CSV),
		Strategy:      cfg.Strategy.String(),
		Shifts:        export.Records(r.Schedule),
		Carryover:     r.Carryover,
		FairnessScore: r.Fairness,
		Members:       members,
	}
}
