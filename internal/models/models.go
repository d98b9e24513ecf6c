// package models defines the data model for the playlist manager
package models

// Store defines the unit-of-work style repository for playlists.
//
// Fetched playlists are tracked until [Store.Commit] or [Store.Discard]; mutations made on them
// (including appended items) are written by the next commit.
type Store interface {
	FetchAll() ([]*Playlist, error)         // FetchAll returns every playlist with its items
	FetchByID(id string) (*Playlist, error) // FetchByID returns a playlist or an error wrapping shared.ErrPlaylistNotFound
	Insert(p *Playlist)                     // Insert schedules a new playlist for the next commit
	DeletePlaylist(p *Playlist)             // DeletePlaylist schedules a playlist and its items for removal
	DeleteItem(item *Item)                  // DeleteItem detaches an item; the caller renumbers the owner
	Commit() error                          // Commit persists all pending changes in one transaction
	Discard()                               // Discard drops uncommitted changes
}

// ReceiptStore is implemented by stores that remember which inbox records were applied.
//
// Receipts recorded with MarkApplied are persisted by the same commit as the items they produced.
type ReceiptStore interface {
	Applied(key string) (bool, error)
	MarkApplied(key, playlistID string)
}
