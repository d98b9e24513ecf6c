package tasks

import (
	"fmt"

	"github.com/desertthunder/linkreel/internal/models"
)

// ProgressUpdate represents a progress event during a drain or publish.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadQueue Phase = iota
	ApplyRecords
	CommitStore
	RewriteQueue
	PublishIndex
)

func (p Phase) String() string {
	switch p {
	case ReadQueue:
		return "read_queue"
	case ApplyRecords:
		return "apply_records"
	case CommitStore:
		return "commit_store"
	case RewriteQueue:
		return "rewrite_queue"
	case PublishIndex:
		return "publish_index"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func readQueueUpdate(pending int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadQueue,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d pending record(s)", pending),
	}
}

func recordUpdate(step, total int, outcome RecordOutcome) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s %s", step, total, outcome.Outcome, outcome.Record.URL)
	if outcome.Item != nil {
		msg = fmt.Sprintf("[%d/%d] ✓ %s (#%d)", step, total, outcome.Item.DisplayLabel(), outcome.Item.OrderIndex)
	}
	return ProgressUpdate{
		Phase:   ApplyRecords,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func commitUpdate(applied int, err error) ProgressUpdate {
	msg := fmt.Sprintf("Committed %d item(s)", applied)
	if err != nil {
		msg = fmt.Sprintf("✗ Commit failed: %v", err)
	}
	return ProgressUpdate{Phase: CommitStore, Step: 1, Total: 1, Message: msg}
}

func rewriteUpdate(remaining int, err error) ProgressUpdate {
	msg := fmt.Sprintf("Queue rewritten (%d left)", remaining)
	if err != nil {
		msg = fmt.Sprintf("✗ Queue rewrite failed: %v", err)
	}
	return ProgressUpdate{Phase: RewriteQueue, Step: 1, Total: 1, Message: msg}
}

func publishUpdate(entries []models.IndexEntry, err error) ProgressUpdate {
	msg := fmt.Sprintf("Published %d playlist(s)", len(entries))
	if err != nil {
		msg = fmt.Sprintf("✗ Publish failed: %v", err)
	}
	return ProgressUpdate{Phase: PublishIndex, Step: 1, Total: 1, Message: msg, Data: entries}
}
