// package services implements the host role's playlist operations on top of the store and handoff pipeline.
package services

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/linkreel/internal/formatter"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
	"github.com/desertthunder/linkreel/internal/tasks"
)

// Library serialises all playlist mutations of the host role.
type Library struct {
	mu       sync.Mutex
	store    models.Store
	pipeline *tasks.Pipeline
	logger   *log.Logger
	now      func() time.Time
}

// NewLibrary creates a Library over store. pipeline supplies the drainer and publisher for the same store.
func NewLibrary(store models.Store, pipeline *tasks.Pipeline, logger *log.Logger) *Library {
	return &Library{store: store, pipeline: pipeline, logger: logger, now: time.Now}
}

// CreatePlaylist adds a playlist with a trimmed, non-empty title.
func (l *Library) CreatePlaylist(ctx context.Context, title string) (*models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := models.NewPlaylist(title, l.now())
	if err != nil {
		return nil, err
	}

	l.store.Discard()
	l.store.Insert(p)
	if err := l.commit(); err != nil {
		return nil, err
	}

	l.logger.Info("created playlist", "id", p.ID, "title", p.Title)
	l.publish(ctx)
	return p, nil
}

// RenamePlaylist sets a new title.
func (l *Library) RenamePlaylist(ctx context.Context, id, title string) (*models.Playlist, error) {
	return l.mutate(ctx, id, true, func(p *models.Playlist) error {
		return p.Rename(title, l.now())
	})
}

// SetAppearance replaces the playlist background.
func (l *Library) SetAppearance(ctx context.Context, id string, appearance models.Appearance) (*models.Playlist, error) {
	if err := appearance.Validate(); err != nil {
		return nil, err
	}
	if appearance.Kind != models.BackgroundColor {
		appearance.Color = nil
	}
	if appearance.Kind != models.BackgroundPhoto {
		appearance.Image = nil
	}

	return l.mutate(ctx, id, true, func(p *models.Playlist) error {
		p.Appearance = appearance
		p.Touch(l.now())
		return nil
	})
}

// DeletePlaylist removes a playlist and its items.
func (l *Library) DeletePlaylist(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.Discard()
	p, err := l.store.FetchByID(id)
	if err != nil {
		return err
	}

	l.store.DeletePlaylist(p)
	if err := l.commit(); err != nil {
		return err
	}

	l.logger.Info("deleted playlist", "id", p.ID, "title", p.Title)
	l.publish(ctx)
	return nil
}

// ListPlaylists returns every playlist, most recently updated first.
func (l *Library) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	defer l.store.Discard()
	l.store.Discard()

	playlists, err := l.store.FetchAll()
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(playlists)
	slices.SortStableFunc(sorted, func(a, b *models.Playlist) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return sorted, nil
}

// GetPlaylist returns the playlist with the given id.
func (l *Library) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	defer l.store.Discard()
	l.store.Discard()

	return l.store.FetchByID(id)
}

// FindPlaylist resolves query as a playlist id, or else as a case-insensitive title.
func (l *Library) FindPlaylist(ctx context.Context, query string) (*models.Playlist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	defer l.store.Discard()
	l.store.Discard()

	if id, err := shared.CanonicalID(query); err == nil {
		if p, err := l.store.FetchByID(id); err == nil {
			return p, nil
		}
	}

	playlists, err := l.store.FetchAll()
	if err != nil {
		return nil, err
	}

	var matches []*models.Playlist
	for _, p := range playlists {
		if strings.EqualFold(p.Title, query) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, query)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d playlists titled %q", shared.ErrAmbiguousMatch, len(matches), query)
	}
}

// AddItem appends a link to a playlist.
//
// The URL is trimmed and gets an https:// scheme when it has none; the label is required.
func (l *Library) AddItem(ctx context.Context, playlistID, label, rawURL string) (*models.Item, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.ErrEmptyLabel
	}
	u, err := models.SanitizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	var item *models.Item
	_, err = l.mutate(ctx, playlistID, false, func(p *models.Playlist) error {
		item = p.AddItem(label, u, l.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// EditItem changes an item's label and link. An empty rawURL keeps the current link.
func (l *Library) EditItem(ctx context.Context, playlistID, itemID, label, rawURL string) (*models.Item, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.ErrEmptyLabel
	}

	var item *models.Item
	_, err := l.mutate(ctx, playlistID, false, func(p *models.Playlist) error {
		it, err := p.Item(itemID)
		if err != nil {
			return err
		}

		if strings.TrimSpace(rawURL) != "" {
			u, err := models.SanitizeURL(rawURL)
			if err != nil {
				return err
			}
			it.URL = u.String()
		}
		it.Label = label
		p.Touch(l.now())
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item and renumbers the rest.
func (l *Library) DeleteItem(ctx context.Context, playlistID, itemID string) error {
	_, err := l.mutate(ctx, playlistID, false, func(p *models.Playlist) error {
		removed, err := p.RemoveItem(itemID, l.now())
		if err != nil {
			return err
		}
		l.store.DeleteItem(removed)
		return nil
	})
	return err
}

// MoveItem moves the item at position from to position to; positions are zero-based in display order.
func (l *Library) MoveItem(ctx context.Context, playlistID string, from, to int) (*models.Playlist, error) {
	return l.mutate(ctx, playlistID, false, func(p *models.Playlist) error {
		return p.MoveItem(from, to, l.now())
	})
}

// ImportResult reports what [Library.ImportBookmarks] did.
type ImportResult struct {
	Added   []*models.Item
	Skipped []formatter.Bookmark
}

// ImportBookmarks appends every bookmark in a Netscape bookmark file to a playlist, in file order.
//
// When folder is set only bookmarks in that folder (or below it) are imported. Bookmarks whose link is not
// an absolute URL with a host are skipped.
func (l *Library) ImportBookmarks(ctx context.Context, playlistID string, r io.Reader, folder string) (*ImportResult, error) {
	bookmarks, err := formatter.ParseBookmarksHTML(r)
	if err != nil {
		return nil, err
	}

	folder = strings.Trim(strings.TrimSpace(folder), "/")
	result := &ImportResult{}

	_, err = l.mutate(ctx, playlistID, false, func(p *models.Playlist) error {
		now := l.now()
		for _, b := range bookmarks {
			if folder != "" && b.Folder != folder && !strings.HasPrefix(b.Folder, folder+"/") {
				continue
			}
			u, err := models.ParseItemURL(b.URL)
			if err != nil {
				result.Skipped = append(result.Skipped, b)
				continue
			}
			label := cmp.Or(b.Title, u.Host)
			result.Added = append(result.Added, p.AddItem(label, u, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("imported bookmarks", "playlist", playlistID, "added", len(result.Added), "skipped", len(result.Skipped))
	return result, nil
}

// Foreground drains the inbox and republishes the index, as when the host becomes active.
func (l *Library) Foreground(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.PipelineResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.pipeline.Run(ctx, progress)
}

// Drain applies the inbox without republishing the index.
func (l *Library) Drain(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.DrainResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.pipeline.Drainer().Drain(ctx, progress)
}

// Publish rebuilds the index snapshot and returns the publish error, if any.
func (l *Library) Publish(ctx context.Context) (*tasks.PublishResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.pipeline.Publisher().Publish(ctx, nil)
}

// mutate applies fn to a freshly loaded copy of the playlist and commits. Any failure discards the change.
func (l *Library) mutate(ctx context.Context, id string, republish bool, fn func(p *models.Playlist) error) (*models.Playlist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.store.Discard()
	p, err := l.store.FetchByID(id)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		l.store.Discard()
		return nil, err
	}
	if err := l.commit(); err != nil {
		return nil, err
	}

	if republish {
		l.publish(ctx)
	}
	return p, nil
}

func (l *Library) commit() error {
	if err := l.store.Commit(); err != nil {
		l.store.Discard()
		l.logger.Error("failed to save changes", "error", err)
		return err
	}
	return nil
}

// publish refreshes the index snapshot; failures only leave it stale.
func (l *Library) publish(ctx context.Context) {
	if _, err := l.pipeline.Publisher().Publish(ctx, nil); err != nil {
		l.logger.Error("index publish failed", "error", err)
	}
}
