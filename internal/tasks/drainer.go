package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/metrics"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// RecordOutcome is what happened to one queued record.
type RecordOutcome struct {
	Record  models.InboxRecord
	Outcome string       // One of the metrics.Outcome* values
	Item    *models.Item // Item created for an applied record
	Err     error        // Why the record was not applied
}

// DrainResult contains the outcome of one drain.
type DrainResult struct {
	Delivery  string
	Records   []RecordOutcome
	Applied   int
	Malformed int
	Dangling  int
	Duplicate int
	Failed    int
	CommitErr error // Store commit failure, if any
	QueueErr  error // Queue read or rewrite failure, if any
	Remaining int   // Records left in the queue after the rewrite
}

// Drainer applies inbox records to the playlist store.
type Drainer struct {
	container *handoff.Container
	store     models.Store
	receipts  models.ReceiptStore
	delivery  string
	logger    *log.Logger
	now       func() time.Time
}

// NewDrainer creates a Drainer. An unknown delivery policy falls back to at-most-once.
func NewDrainer(container *handoff.Container, store models.Store, delivery string, logger *log.Logger) *Drainer {
	d, err := validDelivery(delivery)
	if err != nil {
		logger.Warn("falling back to at-most-once delivery", "error", err)
	}

	drainer := &Drainer{container: container, store: store, delivery: d, logger: logger, now: time.Now}
	if rs, ok := store.(models.ReceiptStore); ok && d == shared.DeliveryAcknowledged {
		drainer.receipts = rs
	}
	return drainer
}

// Delivery returns the policy in effect.
func (d *Drainer) Delivery() string { return d.delivery }

// Drain reads the queue, applies every record in queue order, commits once and rewrites the queue.
//
// Per-record problems and store or queue failures are reported in the result rather than returned.
// Only a context that is already cancelled stops a drain; once started it runs to completion.
func (d *Drainer) Drain(ctx context.Context, progress chan<- ProgressUpdate) (*DrainResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.DrainDuration.Observe(since(start)) }()
	metrics.DrainRunsTotal.WithLabelValues(d.delivery).Inc()

	result := &DrainResult{Delivery: d.delivery}

	// Records apply to the playlists as committed now, not to copies loaded earlier.
	d.store.Discard()

	records, err := d.container.ReadQueue()
	if err != nil {
		// An unparsable queue can never be applied; replace it with the empty queue.
		d.logger.Warn("inbox queue unreadable, treating as empty", "path", d.container.QueuePath(), "error", err)
		result.QueueErr = err
		d.rewrite(result, nil, progress)
		return result, nil
	}

	sendProgress(progress, readQueueUpdate(len(records)))
	if len(records) == 0 {
		metrics.InboxPending.Set(0)
		return result, nil
	}

	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		outcome := d.apply(rec, seen)
		result.Records = append(result.Records, outcome)
		sendProgress(progress, recordUpdate(i+1, len(records), outcome))
	}

	applied := lo.CountBy(result.Records, func(o RecordOutcome) bool { return o.Outcome == metrics.OutcomeApplied })
	if applied > 0 {
		if err := d.store.Commit(); err != nil {
			result.CommitErr = err
			metrics.InboxCommitFailures.Inc()
			d.logger.Error("failed to commit drained items", "error", err, "records", applied)
			d.store.Discard()
			for i := range result.Records {
				if result.Records[i].Outcome == metrics.OutcomeApplied {
					result.Records[i].Outcome = metrics.OutcomeFailed
					result.Records[i].Err = err
					result.Records[i].Item = nil
				}
			}
		}
		sendProgress(progress, commitUpdate(applied, result.CommitErr))
	}

	d.tally(result)
	d.rewrite(result, records, progress)

	d.logger.Info("drained inbox",
		"delivery", d.delivery,
		"applied", result.Applied,
		"malformed", result.Malformed,
		"dangling", result.Dangling,
		"duplicate", result.Duplicate,
		"failed", result.Failed,
		"remaining", result.Remaining,
	)
	return result, nil
}

// apply resolves one record against the store and appends the new item to its playlist.
func (d *Drainer) apply(rec models.InboxRecord, seen map[string]struct{}) RecordOutcome {
	outcome := RecordOutcome{Record: rec}

	if rec.Type != models.RecordAddItem {
		outcome.Outcome = metrics.OutcomeMalformed
		outcome.Err = fmt.Errorf("%w: unknown record type %q", shared.ErrInvalidInput, rec.Type)
		return outcome
	}

	u, err := models.ParseItemURL(rec.URL)
	if err != nil {
		outcome.Outcome = metrics.OutcomeMalformed
		outcome.Err = err
		return outcome
	}

	key := rec.Key()
	if d.receipts != nil {
		if _, dup := seen[key]; dup {
			outcome.Outcome = metrics.OutcomeDuplicate
			return outcome
		}
		applied, err := d.receipts.Applied(key)
		if err != nil {
			outcome.Outcome = metrics.OutcomeFailed
			outcome.Err = err
			return outcome
		}
		if applied {
			outcome.Outcome = metrics.OutcomeDuplicate
			return outcome
		}
	}

	pid := rec.PlaylistID
	if canon, err := shared.CanonicalID(pid); err == nil {
		pid = canon
	}

	playlist, err := d.store.FetchByID(pid)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		outcome.Outcome = metrics.OutcomeDangling
		outcome.Err = err
		return outcome
	case err != nil:
		outcome.Outcome = metrics.OutcomeFailed
		outcome.Err = err
		d.logger.Warn("failed to look up playlist for inbox record", "playlist", pid, "error", err)
		return outcome
	}

	outcome.Item = playlist.AddItem(rec.Label, u, d.now())
	outcome.Outcome = metrics.OutcomeApplied
	if d.receipts != nil {
		seen[key] = struct{}{}
		d.receipts.MarkApplied(key, playlist.ID)
	}
	return outcome
}

func (d *Drainer) tally(result *DrainResult) {
	for _, o := range result.Records {
		metrics.InboxRecordsTotal.WithLabelValues(o.Outcome).Inc()
		switch o.Outcome {
		case metrics.OutcomeApplied:
			result.Applied++
		case metrics.OutcomeMalformed:
			result.Malformed++
		case metrics.OutcomeDangling:
			result.Dangling++
		case metrics.OutcomeDuplicate:
			result.Duplicate++
		case metrics.OutcomeFailed:
			result.Failed++
		}
	}
}

// rewrite replaces the queue according to the delivery policy.
//
// at-most-once always writes the empty queue. acknowledged re-reads the queue and keeps every record that
// was not settled by this pass, including records appended while the drain ran.
func (d *Drainer) rewrite(result *DrainResult, drained []models.InboxRecord, progress chan<- ProgressUpdate) {
	var remaining []models.InboxRecord

	if d.delivery == shared.DeliveryAcknowledged && len(drained) > 0 {
		unsettled := make(map[string]struct{})
		for _, o := range result.Records {
			if o.Outcome == metrics.OutcomeFailed {
				unsettled[o.Record.Key()] = struct{}{}
			}
		}
		settled := make(map[string]struct{})
		for _, o := range result.Records {
			if _, ok := unsettled[o.Record.Key()]; !ok {
				settled[o.Record.Key()] = struct{}{}
			}
		}

		current, err := d.container.ReadQueue()
		if err != nil {
			d.logger.Warn("inbox queue unreadable before rewrite, keeping unsettled records", "error", err)
			current = drained
		}
		remaining = lo.Filter(current, func(rec models.InboxRecord, _ int) bool {
			_, ok := settled[rec.Key()]
			return !ok
		})
	}

	err := d.container.WriteQueue(remaining)
	metrics.InboxQueueWrites.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		d.logger.Error("failed to rewrite inbox queue", "error", err)
		if result.QueueErr == nil {
			result.QueueErr = err
		}
		result.Remaining = len(drained)
	} else {
		result.Remaining = len(remaining)
	}

	metrics.InboxPending.Set(float64(result.Remaining))
	sendProgress(progress, rewriteUpdate(result.Remaining, err))
}
