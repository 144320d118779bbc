// Package metrics provides Prometheus instrumentation for schedule generation.
package metrics

import (
	"errors"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/roster"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the metric instances for the rotation service
type Registry struct {
	SchedulesGenerated *prometheus.CounterVec
	ScheduleFailures   *prometheus.CounterVec
	ShiftsAssigned     *prometheus.CounterVec
	Deferrals          *prometheus.CounterVec
	PoolRefills        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		SchedulesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rotation",
				Subsystem: "scheduler",
				Name:      "schedules_total",
				Help:      "Total number of schedules generated",
			},
			[]string{"strategy"},
		),
		ScheduleFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rotation",
				Subsystem: "scheduler",
				Name:      "failures_total",
				Help:      "Total number of aborted schedule generations",
			},
			[]string{"strategy", "reason"},
		),
		ShiftsAssigned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rotation",
				Subsystem: "scheduler",
				Name:      "shifts_total",
				Help:      "Total number of shifts assigned",
			},
			[]string{"strategy"},
		),
		Deferrals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rotation",
				Subsystem: "scheduler",
				Name:      "deferrals_total",
				Help:      "Entries moved to the back of the pool because of a recent assignment",
			},
			[]string{"strategy"},
		),
		PoolRefills: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rotation",
				Subsystem: "scheduler",
				Name:      "refills_total",
				Help:      "Roster copies appended to the pool",
			},
			[]string{"strategy"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rotation",
				Subsystem: "scheduler",
				Name:      "generation_duration_seconds",
				Help:      "Time spent generating one schedule",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
	}
}

// Reason maps a generation error onto a low cardinality label
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, scheduler.ErrEmptyRoster):
		return "empty_roster"
	case errors.Is(err, scheduler.ErrNotEnoughDistinctMembers):
		return "not_enough_members"
	case errors.Is(err, roster.ErrMalformedEntry):
		return "malformed_entry"
	}
	return "other"
}

// Observe records one generation run. A nil registry is a no-op.
func (r *Registry) Observe(strategy string, stats scheduler.Stats, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.GenerationDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	r.Deferrals.WithLabelValues(strategy).Add(float64(stats.Deferrals))
	r.PoolRefills.WithLabelValues(strategy).Add(float64(stats.Refills + stats.StallRefill))
	if err != nil {
		r.ScheduleFailures.WithLabelValues(strategy, Reason(err)).Inc()
		return
	}
	r.SchedulesGenerated.WithLabelValues(strategy).Inc()
	r.ShiftsAssigned.WithLabelValues(strategy).Add(float64(stats.Shifts))
}
