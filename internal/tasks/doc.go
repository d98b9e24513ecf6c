// Package tasks implements the host side of the handoff: draining the inbox queue into the playlist store
// and publishing the index snapshot, with real-time progress reporting.
//
// # Core Operations
//
//  1. [Drainer.Drain] : apply queued share records to the store
//     - Reads the queue; an absent or empty queue is a no-op
//     - Applies records in queue order, dropping malformed and dangling ones
//     - Commits once, then rewrites the queue according to the delivery policy
//
//  2. [Publisher.Publish] : rebuild the index snapshot
//     - Projects every playlist to its id and title
//     - Atomically replaces the snapshot file
//
//  3. [Pipeline.Run] : drain, then publish, as one step
//
//  4. [Watcher.Watch] : watch the inbox folder and run the pipeline when the queue changes
//
// # Delivery Policies
//
// at-most-once clears the whole queue after every drain, even when the commit failed. A failed commit
// therefore loses the drained records instead of replaying them.
//
// acknowledged removes only records that were committed or can never be applied. Applied record keys are
// stored as receipts in the same transaction so a redelivered record is skipped.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with default to prevent
// blocking; a nil channel disables reporting.
package tasks
