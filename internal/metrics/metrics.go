package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts attendance scans by result (recorded, rescan, or the
	// refusal reason).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_attendance_scans_total",
		Help: "Attendance scan attempts by result.",
	}, []string{"result"})

	// DecisionsTotal counts approval state machine decisions.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campushub_approval_decisions_total",
		Help: "Approve/reject decisions by entity and outcome.",
	}, []string{"entity", "outcome"})

	// QueueDropsTotal counts events that could not be published.
	QueueDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campushub_queue_publish_failures_total",
		Help: "Engine events dropped because the queue publish failed.",
	})
)
