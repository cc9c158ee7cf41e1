// Package metrics defines the custom Prometheus metrics of the task API. HTTP
// request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskapi"

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts created tasks.
// Label:
//   - priority: "low", "medium" or "high"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)

// TaskUpdatesTotal counts successful task updates by resulting status.
var TaskUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_updates_total",
		Help:      "Total number of task updates, by resulting status.",
	},
	[]string{"status"},
)

// TaskConflictsTotal counts writes rejected because the task changed underneath.
var TaskConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_conflicts_total",
		Help:      "Total number of task writes rejected by the version check.",
	},
)

// FilesUploadedTotal counts attached files.
// Label:
//   - kind: "csv" or "other"
var FilesUploadedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_uploaded_total",
		Help:      "Total number of files attached to tasks.",
	},
	[]string{"kind"},
)

// ── Reminder metrics ──────────────────────────────────────────────────────────

// RemindersTotal counts reminder outcomes.
// Label:
//   - result: "queued", "skipped", "sent" or "failed"
var RemindersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_total",
		Help:      "Reminder emails by outcome.",
	},
	[]string{"result"},
)

// ReminderScanDuration measures one reminder scan.
var ReminderScanDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reminder_scan_duration_seconds",
		Help:      "Duration of a reminder scan, excluding delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)
