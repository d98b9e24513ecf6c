package repositories

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

var (
	_ models.Store        = (*PlaylistStore)(nil)
	_ models.ReceiptStore = (*PlaylistStore)(nil)
)

type receipt struct {
	key        string
	playlistID string
}

// PlaylistStore implements [models.Store] and [models.ReceiptStore] on SQLite.
type PlaylistStore struct {
	db *sql.DB

	mu       sync.Mutex
	tracked  map[string]*models.Playlist
	order    []string
	inserted map[string]struct{}
	loaded   map[string]string // fingerprint of each playlist as read from the database
	deleted  map[string]struct{}
	dropped  map[string]struct{}
	receipts []receipt
	now      func() time.Time
}

// NewPlaylistStore creates a new PlaylistStore with the given database connection
func NewPlaylistStore(db *sql.DB) *PlaylistStore {
	s := &PlaylistStore{db: db, now: time.Now}
	s.reset()
	return s
}

func (s *PlaylistStore) reset() {
	s.tracked = make(map[string]*models.Playlist)
	s.order = nil
	s.inserted = make(map[string]struct{})
	s.loaded = make(map[string]string)
	s.deleted = make(map[string]struct{})
	s.dropped = make(map[string]struct{})
	s.receipts = nil
}

// track returns the already tracked instance for p.ID, or starts tracking p.
func (s *PlaylistStore) track(p *models.Playlist) *models.Playlist {
	if existing, ok := s.tracked[p.ID]; ok {
		return existing
	}
	s.tracked[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

// load starts tracking a playlist read from the database and remembers its state for change detection.
func (s *PlaylistStore) load(p *models.Playlist) *models.Playlist {
	if existing, ok := s.tracked[p.ID]; ok {
		return existing
	}
	s.loaded[p.ID] = fingerprint(p)
	return s.track(p)
}

// FetchAll returns every playlist in creation order, followed by playlists inserted since the last commit.
func (s *PlaylistStore) FetchAll() ([]*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.queryPlaylists(`
		SELECT id, sequence, title, background_kind, background_color, background_image, created_at, updated_at
		FROM playlists
		ORDER BY sequence ASC
	`)
	if err != nil {
		return nil, err
	}

	items, err := s.queryItems(`
		SELECT id, playlist_id, label, url, order_index, created_at
		FROM playlist_items
		ORDER BY playlist_id, order_index ASC
	`)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(loaded))
	playlists := make([]*models.Playlist, 0, len(loaded))
	for _, p := range loaded {
		seen[p.ID] = struct{}{}
		if _, gone := s.deleted[p.ID]; gone {
			continue
		}
		if _, ok := s.tracked[p.ID]; !ok {
			p.Items = s.withoutDropped(items[p.ID])
		}
		playlists = append(playlists, s.load(p))
	}

	for _, id := range s.order {
		if _, ok := seen[id]; !ok {
			playlists = append(playlists, s.tracked[id])
		}
	}

	return playlists, nil
}

// FetchByID returns the playlist with the given id and its items.
func (s *PlaylistStore) FetchByID(id string) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.deleted[id]; gone {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if p, ok := s.tracked[id]; ok {
		return p, nil
	}

	found, err := s.queryPlaylists(`
		SELECT id, sequence, title, background_kind, background_color, background_image, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	items, err := s.queryItems(`
		SELECT id, playlist_id, label, url, order_index, created_at
		FROM playlist_items
		WHERE playlist_id = ?
		ORDER BY order_index ASC
	`, id)
	if err != nil {
		return nil, err
	}

	p := found[0]
	p.Items = s.withoutDropped(items[id])
	return s.load(p), nil
}

// Insert schedules a new playlist for the next commit.
func (s *PlaylistStore) Insert(p *models.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.deleted, p.ID)
	s.inserted[p.ID] = struct{}{}
	s.track(p)
}

// DeletePlaylist schedules p and its items for removal.
func (s *PlaylistStore) DeletePlaylist(p *models.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tracked[p.ID]; ok {
		delete(s.tracked, p.ID)
		for i, id := range s.order {
			if id == p.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	delete(s.inserted, p.ID)
	delete(s.loaded, p.ID)
	s.deleted[p.ID] = struct{}{}
}

// DeleteItem detaches item from its tracked owner and schedules the row for removal.
//
// Renumbering the remaining items is left to the caller.
func (s *PlaylistStore) DeleteItem(item *models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.tracked[item.PlaylistID]; ok {
		for i, it := range owner.Items {
			if it.ID == item.ID {
				owner.Items = append(owner.Items[:i], owner.Items[i+1:]...)
				break
			}
		}
	}
	s.dropped[item.ID] = struct{}{}
}

// Applied reports whether an inbox record key was committed earlier or is pending in this unit of work.
func (s *PlaylistStore) Applied(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.receipts {
		if r.key == key {
			return true, nil
		}
	}

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM inbox_receipts WHERE record_key = ?)", key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check inbox receipt: %w", err)
	}
	return exists, nil
}

// MarkApplied records key as applied; the receipt is written by the next commit.
func (s *PlaylistStore) MarkApplied(key, playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts = append(s.receipts, receipt{key: key, playlistID: playlistID})
}

// Discard drops every uncommitted change; later fetches reload from the database.
func (s *PlaylistStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
}

// Commit writes inserted and changed playlists, their items, pending deletions and receipts in one
// transaction. Tracked playlists that were only read are left alone.
//
// A changed playlist that no longer exists in the database fails the commit with
// [shared.ErrPlaylistNotFound]; it is never recreated.
//
// On success the unit of work is reset. On failure nothing is written and the pending changes are kept,
// so the caller decides between retrying and [PlaylistStore.Discard].
func (s *PlaylistStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := s.dirty()
	for _, id := range dirty {
		if err := s.tracked[id].Validate(); err != nil {
			return fmt.Errorf("%w: playlist %s: %w", shared.ErrCommitFailed, id, err)
		}
	}

	sequences, err := s.write(dirty)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCommitFailed, err)
	}

	for id, seq := range sequences {
		s.tracked[id].Sequence = seq
	}
	s.reset()
	return nil
}

// dirty returns the tracked playlists that were inserted or differ from what was loaded, in tracking order.
func (s *PlaylistStore) dirty() []string {
	var ids []string
	for _, id := range s.order {
		if _, ok := s.inserted[id]; ok {
			ids = append(ids, id)
			continue
		}
		if fingerprint(s.tracked[id]) != s.loaded[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *PlaylistStore) write(dirty []string) (map[string]int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for id := range s.dropped {
		if _, err := tx.Exec("DELETE FROM playlist_items WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to delete item: %w", err)
		}
	}

	for id := range s.deleted {
		if _, err := tx.Exec("DELETE FROM playlist_items WHERE playlist_id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to delete playlist items: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to delete playlist: %w", err)
		}
	}

	sequences := make(map[string]int)
	for _, id := range dirty {
		p := s.tracked[id]

		if _, ok := s.inserted[id]; ok {
			seq := p.Sequence
			if seq == 0 {
				if seq, err = nextSequence(tx, "playlists"); err != nil {
					return nil, err
				}
				sequences[id] = seq
			}
			if err := insertPlaylist(tx, p, seq); err != nil {
				return nil, err
			}
		} else if err := updatePlaylist(tx, p); err != nil {
			return nil, err
		}

		if err := replaceItems(tx, p); err != nil {
			return nil, err
		}
	}

	appliedAt := s.now()
	for _, r := range s.receipts {
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO inbox_receipts (record_key, playlist_id, applied_at) VALUES (?, ?, ?)",
			r.key, r.playlistID, appliedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to record inbox receipt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return sequences, nil
}

func appearanceColumns(a models.Appearance) (string, sql.NullString) {
	var color sql.NullString
	if a.Color != nil {
		color = sql.NullString{String: a.Color.Hex(), Valid: true}
	}
	kind := a.Kind
	if kind == "" {
		kind = models.BackgroundNone
	}
	return string(kind), color
}

func insertPlaylist(tx *sql.Tx, p *models.Playlist, seq int) error {
	kind, color := appearanceColumns(p.Appearance)

	query := `
		INSERT INTO playlists (id, sequence, title, background_kind, background_color, background_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query, p.ID, seq, p.Title, kind, color, p.Appearance.Image, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// updatePlaylist writes an existing playlist's fields. A playlist removed by another process is not found.
func updatePlaylist(tx *sql.Tx, p *models.Playlist) error {
	kind, color := appearanceColumns(p.Appearance)

	query := `
		UPDATE playlists
		SET title = ?, background_kind = ?, background_color = ?, background_image = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := tx.Exec(query, p.Title, kind, color, p.Appearance.Image, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, p.ID)
	}
	return nil
}

// fingerprint hashes every persisted field of p and its items.
func fingerprint(p *models.Playlist) string {
	h := sha256.New()
	kind, color := appearanceColumns(p.Appearance)
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%x\x00%d\x00",
		p.Title, kind, color.String, len(p.Appearance.Image), p.Appearance.Image, p.UpdatedAt.UnixNano())
	for _, it := range p.Items {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d\x00", it.ID, it.Label, it.URL, it.OrderIndex, it.CreatedAt.UnixNano())
	}
	return string(h.Sum(nil))
}

func replaceItems(tx *sql.Tx, p *models.Playlist) error {
	if _, err := tx.Exec("DELETE FROM playlist_items WHERE playlist_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear playlist items: %w", err)
	}

	query := `
		INSERT INTO playlist_items (id, playlist_id, label, url, order_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, it := range p.Items {
		if _, err := tx.Exec(query, it.ID, p.ID, it.Label, it.URL, it.OrderIndex, it.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	return nil
}

func (s *PlaylistStore) withoutDropped(items []*models.Item) []*models.Item {
	if len(s.dropped) == 0 {
		return items
	}
	kept := items[:0]
	for _, it := range items {
		if _, ok := s.dropped[it.ID]; !ok {
			kept = append(kept, it)
		}
	}
	return kept
}

func (s *PlaylistStore) queryPlaylists(query string, args ...any) ([]*models.Playlist, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

func (s *PlaylistStore) queryItems(query string, args ...any) (map[string][]*models.Item, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]*models.Item)
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.PlaylistID, &it.Label, &it.URL, &it.OrderIndex, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items[it.PlaylistID] = append(items[it.PlaylistID], &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// scanPlaylist scans a row from [sql.Rows] into a [models.Playlist] without items
func scanPlaylist(rows *sql.Rows) (*models.Playlist, error) {
	var (
		p     models.Playlist
		kind  string
		color sql.NullString
		image []byte
	)

	err := rows.Scan(&p.ID, &p.Sequence, &p.Title, &kind, &color, &image, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	p.Appearance = models.Appearance{Kind: models.BackgroundKind(kind), Image: image}
	if color.Valid {
		c, err := models.ParseHexColor(color.String)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist color: %w", err)
		}
		p.Appearance.Color = &c
	}
	return &p, nil
}
