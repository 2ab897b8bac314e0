// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// AutomationSteps counts each orchestration step by outcome (ok|failed|skipped).
	AutomationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_automation_step_total",
			Help: "Automation steps executed, by step and status",
		},
		[]string{"step", "status"},
	)

	AutomationWorkflows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_automation_workflows_total",
			Help: "Automation runs, by result",
		},
		[]string{"result"},
	)

	AutomationWorkflowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_automation_workflow_duration_seconds",
			Help:    "Duration of a full automation run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	FollowUpsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_automation_followups_scheduled_total",
			Help: "Follow-ups handed to the scheduler, by channel and status",
		},
		[]string{"channel", "status"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_automation_messages_total",
			Help: "Outbound messages by channel and status",
		},
		[]string{"channel", "status"},
	)
)

// StepStatus values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ResultLabel maps a boolean outcome to a label value.
func ResultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
