// Package repositories implements SQLite persistence for playlists and their items.
//
// [PlaylistStore] implements models.Store as a unit of work: playlists returned by FetchAll/FetchByID are tracked
// in an identity map, callers mutate them in place, and [PlaylistStore.Commit] writes every tracked playlist,
// pending deletion and inbox receipt in a single transaction. A failed commit leaves the database untouched.
//
// Sequence numbers provide stable, human-readable creation ordering for playlists independent of UUIDs.
// [nextSequence] increments the per-table counter inside the committing transaction.
package repositories
