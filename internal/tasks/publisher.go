package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/metrics"
	"github.com/desertthunder/linkreel/internal/models"
)

// PublishResult describes a published index snapshot.
type PublishResult struct {
	Entries []models.IndexEntry
	Path    string
}

// Publisher rebuilds the index snapshot from the playlist store.
type Publisher struct {
	container *handoff.Container
	store     models.Store
	logger    *log.Logger
}

func NewPublisher(container *handoff.Container, store models.Store, logger *log.Logger) *Publisher {
	return &Publisher{container: container, store: store, logger: logger}
}

// Publish writes one entry per playlist, in creation order, and atomically replaces the snapshot.
//
// Failures leave the previous snapshot in place; callers log them and carry on.
func (p *Publisher) Publish(ctx context.Context, progress chan<- ProgressUpdate) (result *PublishResult, err error) {
	defer func() {
		metrics.IndexPublishesTotal.WithLabelValues(metrics.Status(err)).Inc()
		if err != nil {
			sendProgress(progress, publishUpdate(nil, err))
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Publish reads only committed state and leaves nothing tracked behind.
	p.store.Discard()
	defer p.store.Discard()

	playlists, err := p.store.FetchAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	entries := lo.Map(playlists, func(pl *models.Playlist, _ int) models.IndexEntry {
		return pl.Entry()
	})

	if err := p.container.WriteIndex(entries); err != nil {
		return nil, fmt.Errorf("failed to publish index: %w", err)
	}

	metrics.IndexEntries.Set(float64(len(entries)))
	sendProgress(progress, publishUpdate(entries, nil))
	p.logger.Debug("published index", "entries", len(entries), "path", p.container.IndexPath())

	return &PublishResult{Entries: entries, Path: p.container.IndexPath()}, nil
}
