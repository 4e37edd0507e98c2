// Package metrics provides observability for the moderation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Received     prometheus.Counter
	Blocked      *prometheus.CounterVec
	Decisions    *prometheus.CounterVec
	PendingEdits prometheus.Counter
	Withdrawals  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Received: promauto.NewCounter(prometheus.CounterOpts{
			Name: "udonmap_submissions_received_total",
			Help: "Candidate records accepted into pending status",
		}),
		Blocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "udonmap_submissions_blocked_total",
			Help: "Submission attempts rejected before persisting, by precondition",
		}, []string{"reason"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "udonmap_submission_decisions_total",
			Help: "Moderator decisions by outcome",
		}, []string{"outcome"}),
		PendingEdits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "udonmap_submission_edits_total",
			Help: "Owner edits applied to pending submissions",
		}),
		Withdrawals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "udonmap_submission_withdrawals_total",
			Help: "Pending submissions withdrawn by their owner",
		}),
	}
}
