package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/metrics"
	"github.com/desertthunder/linkreel/internal/shared"
	"github.com/desertthunder/linkreel/internal/tasks"
)

// InboxShow prints the pending records without opening the database.
func (r *Runner) InboxShow(ctx context.Context, cmd *cli.Command) error {
	container := r.sharedContainer()
	records, err := container.ReadQueue()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if records == nil {
			return r.writePlain("[]\n")
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		r.writePlain("Inbox is empty (%s)\n", container.QueuePath())
		return nil
	}

	r.writePlainHeader("Inbox")
	for i, rec := range records {
		r.writePlain("%3d. %s  %s\n     %s → %s\n", i+1, rec.Date.Local().Format("2006-01-02 15:04"), rec.Label, rec.URL, rec.PlaylistID)
	}
	return nil
}

// InboxDrain applies the queue to the store without republishing the index.
func (r *Runner) InboxDrain(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.host()
	if err != nil {
		return err
	}

	progress, done := r.printProgress()
	result, err := lib.Drain(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writeDrainSummary(result)
	return nil
}

// IndexPublish rewrites the index snapshot from the store.
func (r *Runner) IndexPublish(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.host()
	if err != nil {
		return err
	}

	result, err := lib.Publish(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Published %d playlists to %s\n", len(result.Entries), result.Path)
	return nil
}

// IndexShow prints the published index as the share role sees it.
func (r *Runner) IndexShow(ctx context.Context, cmd *cli.Command) error {
	entries, err := r.sharedContainer().ReadIndex()
	if errors.Is(err, shared.ErrNoIndex) {
		r.writePlain("No index published yet. Run 'linkreel index publish'.\n")
		return nil
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Index")
	for _, e := range entries {
		r.writePlain("%-36s  %s\n", e.ID, e.Title)
	}
	return nil
}

// Foreground drains the inbox and republishes the index once.
func (r *Runner) Foreground(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.host()
	if err != nil {
		return err
	}

	progress, done := r.printProgress()
	result, err := lib.Foreground(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writeDrainSummary(result.Drain)
	if result.PublishErr != nil {
		r.writePlain("⚠ Index not published: %v\n", result.PublishErr)
	} else if result.Publish != nil {
		r.writePlain("✓ Published %d playlists\n", len(result.Publish.Entries))
	}
	return nil
}

// Watch runs the foreground pipeline at startup and after every queue change until interrupted.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.host()
	if err != nil {
		return err
	}

	interval := cmd.Duration("interval")
	if interval <= 0 {
		if interval, err = r.config.Watch.RetryInterval(); err != nil {
			return err
		}
	}

	container := r.sharedContainer()
	if err := container.EnsureFolders(); err != nil {
		return err
	}

	watcher := tasks.NewWatcher(lib.Foreground, container.QueuePath(), interval, r.config.Watch.RateLimit, r.logger)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String())
		}
	}()

	r.logger.Info("watching inbox", "queue", container.QueuePath(), "interval", interval, "delivery", r.config.Inbox.Delivery)
	err = watcher.Watch(ctx, progress)
	close(progress)
	<-done
	return err
}

// printProgress drains progress updates to the output until the returned channel is closed.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, <-chan struct{}) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.ApplyRecords:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("• %s\n", update.Message)
			}
		}
	}()
	return progress, done
}

func (r *Runner) writeDrainSummary(result *tasks.DrainResult) {
	if result == nil {
		return
	}

	r.writePlain("\n")
	r.writePlainHeader("Inbox drained")
	r.writePlain("Delivery: %s\n", result.Delivery)
	r.writePlain("Applied: %d\n", result.Applied)
	if skipped := result.Malformed + result.Dangling + result.Duplicate; skipped > 0 {
		r.writePlain("Dropped: %d (malformed %d, unknown playlist %d, duplicate %d)\n",
			skipped, result.Malformed, result.Dangling, result.Duplicate)
	}
	if result.Failed > 0 {
		r.writePlain("Failed: %d\n", result.Failed)
	}
	if result.CommitErr != nil {
		r.writePlain("⚠ Store commit failed: %v\n", result.CommitErr)
	}
	if result.QueueErr != nil {
		r.writePlain("⚠ Queue not rewritten: %v\n", result.QueueErr)
	}
	if result.Delivery == shared.DeliveryAcknowledged {
		r.writePlain("Left in queue: %d\n", result.Remaining)
	}

	for _, o := range result.Records {
		if o.Outcome != metrics.OutcomeApplied && o.Err != nil {
			r.logger.Debug("record not applied", "record", o.Record.Key(), "outcome", o.Outcome, "error", o.Err)
		}
	}
}
