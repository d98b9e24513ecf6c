package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes used as the "outcome" label of InboxRecordsTotal.
const (
	OutcomeApplied   = "applied"
	OutcomeMalformed = "malformed"
	OutcomeDangling  = "dangling"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkreel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkreel_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Inbox metrics
var (
	DrainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_inbox_drain_runs_total",
			Help: "Total number of inbox drains by delivery policy",
		},
		[]string{"delivery"},
	)

	DrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkreel_inbox_drain_duration_seconds",
			Help:    "Inbox drain duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	InboxRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_inbox_records_total",
			Help: "Total number of inbox records processed by outcome",
		},
		[]string{"outcome"},
	)

	InboxCommitFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkreel_inbox_commit_failures_total",
			Help: "Total number of store commits that failed during a drain",
		},
	)

	InboxQueueWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_inbox_queue_writes_total",
			Help: "Total number of queue rewrites by status",
		},
		[]string{"status"},
	)

	InboxPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkreel_inbox_pending_records",
			Help: "Records left in the queue after the last drain",
		},
	)
)

// Index metrics
var (
	IndexPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_index_publishes_total",
			Help: "Total number of index snapshot publishes by status",
		},
		[]string{"status"},
	)

	IndexEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkreel_index_entries",
			Help: "Number of entries in the last published index snapshot",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_watcher_events_total",
			Help: "Total number of file system events seen for the queue file, by operation",
		},
		[]string{"op"}, // "create", "write", "rename", "remove", "chmod"
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkreel_watcher_errors_total",
			Help: "Total number of file watcher errors",
		},
	)

	WatcherTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkreel_watcher_triggers_total",
			Help: "Total number of queue changes seen by the watcher, by result",
		},
		[]string{"result"}, // "ran", "throttled"
	)
)

// Application info
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "linkreel_app_info",
		Help: "Application information",
	},
	[]string{"version", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// Status returns "success" or "error" for use as a status label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
