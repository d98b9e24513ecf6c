package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
	"github.com/desertthunder/linkreel/internal/ui"
)

// Share queues a link for a playlist. It reads only the index snapshot and writes only the inbox queue.
//
// A failed enqueue is logged and the command still reports completion.
func (r *Runner) Share(ctx context.Context, cmd *cli.Command) error {
	rawURL, err := requireArg(cmd, "url")
	if err != nil {
		return err
	}
	if u, err := models.SanitizeURL(rawURL); err == nil {
		rawURL = u.String()
	} else {
		r.logger.Warn("sharing a link that does not parse", "url", rawURL, "error", err)
	}

	container := r.sharedContainer()
	entries, err := container.ReadIndex()
	if err != nil && !errors.Is(err, shared.ErrNoIndex) {
		r.logger.Warn("index snapshot unreadable", "path", container.IndexPath(), "error", err)
	}

	if cmd.Bool("interactive") {
		return r.shareInteractive(container, entries, rawURL, cmd.String("playlist"), cmd.String("label"))
	}

	query := strings.TrimSpace(cmd.String("playlist"))
	if query == "" {
		return fmt.Errorf("%w: --playlist (or use --interactive)", shared.ErrMissingArgument)
	}

	entry, err := handoff.ResolveEntry(entries, query)
	if err != nil {
		// Without an index the only usable destination is an explicit id.
		id, idErr := shared.CanonicalID(query)
		if len(entries) > 0 || idErr != nil {
			return err
		}
		entry = models.IndexEntry{ID: id, Title: id}
	}

	record, err := handoff.NewEnqueuer(container, r.logger).Share(entry.ID, cmd.String("label"), rawURL)
	if err != nil {
		r.logger.Warn("failed to queue shared link", "playlist", entry.ID, "url", rawURL, "error", err)
	} else {
		r.logger.Debug("queued shared link", "record", record.ID, "playlist", entry.ID)
	}

	r.writePlain("✓ Saved to %s\n", entry.Title)
	return nil
}

func (r *Runner) shareInteractive(container *handoff.Container, entries []models.IndexEntry, rawURL, query, label string) error {
	logger, err := r.tuiLogger()
	if err != nil {
		return err
	}

	var preselected *models.IndexEntry
	if query != "" {
		if entry, err := handoff.ResolveEntry(entries, query); err == nil {
			preselected = &entry
		}
	}

	enqueuer := handoff.NewEnqueuer(container, logger)
	model := ui.NewShareModel(entries, rawURL, label, preselected, func(entry models.IndexEntry, label string) (models.InboxRecord, error) {
		return enqueuer.Share(entry.ID, label, rawURL)
	}, logger)

	final, err := r.runTUI(model)
	if err != nil {
		return err
	}

	if sheet, ok := final.(*ui.ShareModel); ok && sheet.Err() != nil {
		r.logger.Warn("failed to queue shared link", "url", rawURL, "error", sheet.Err())
	}
	return nil
}
