// Package models defines the linkreel domain entities and the store contract the handoff tasks depend on.
//
// The package contains two categories of types:
//
// 1. Durable entities owned by the playlist store
//   - [Playlist] : a titled, ordered collection of items with an optional [Appearance]
//   - [Item] : a labeled video URL owned by exactly one playlist
//
// 2. Handoff artifacts living in the shared container (caches and mailboxes, never authoritative)
//   - [IndexEntry] : id/title projection of a playlist read by the share command
//   - [InboxRecord] : a pending "add item" request written by the share command
//
// Items keep a dense zero-based order index. [Playlist.RemoveItem] and [Playlist.MoveItem] renumber
// after every structural change; [Playlist.Renumber] can be called directly after bulk edits.
//
// [Store] is the repository contract used by the drainer, publisher and library.
package models
