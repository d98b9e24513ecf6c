// Package metrics provides Prometheus instrumentation for linkreel.
//
// All metrics are registered on the default registry through promauto and prefixed with "linkreel_".
// The serve command exposes them on /metrics; the CLI commands update the same collectors but never
// serve them, so the values only matter for long-running watch and serve processes.
//
// # Metric Categories
//
// HTTP: request counts, durations and in-flight requests for the local API.
//
// Inbox: drain runs, records by outcome, commit failures, queue rewrites and the pending depth seen by
// the last drain.
//
// Index: publishes by status and the number of entries in the last published snapshot.
//
// Watcher: file system events on the inbox folder, watcher errors, pipeline runs triggered by queue
// changes and throttled triggers.
package metrics
