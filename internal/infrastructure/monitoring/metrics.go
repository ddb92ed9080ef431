package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type WorkflowMetrics struct {
	TransitionsTotal     *prometheus.CounterVec
	DisbursedAmountTotal prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
	RemindersSentTotal   prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_origination_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Workflow = WorkflowMetrics{
		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_transitions_total",
				Help: "Loan request status transitions by source and target status.",
			},
			[]string{"from", "to"},
		),
		DisbursedAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_origination_disbursed_amount_total",
				Help: "Sum of principal amounts disbursed.",
			},
		),
		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_notifications_total",
				Help: "Notification dispatch attempts by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		RemindersSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_origination_review_reminders_total",
				Help: "Review reminders sent to marketing agents.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordTransition(from, to string) {
	if from == "" {
		from = "NONE"
	}
	Workflow.TransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordDisbursement(amount float64) {
	Workflow.DisbursedAmountTotal.Add(amount)
}

func RecordNotification(channel string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	Workflow.NotificationsTotal.WithLabelValues(channel, outcome).Inc()
}

func RecordReminder() {
	Workflow.RemindersSentTotal.Inc()
}
