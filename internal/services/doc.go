// Package services implements [Library], the host role's playlist operations.
//
// # Library
//
// Every mutation runs behind one mutex, mirroring a single UI thread: fetch from the store, change the
// tracked playlist, commit, and on failure discard the unit of work so no half-applied change leaks into
// the next commit.
//
// Playlist-level changes (create, rename, appearance, delete) republish the index snapshot afterwards.
// A failed publish is logged and never fails the operation; the snapshot stays stale until the next
// successful publish.
//
// Item changes keep order indexes dense: adding appends at max+1, deleting and moving renumber the rest.
//
// # Foreground
//
// [Library.Foreground] runs the drain-then-publish pipeline under the same mutex, so the watcher and the
// HTTP API never interleave a drain with an edit.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrPlaylistNotFound] : unknown playlist id or title
//   - [shared.ErrItemNotFound] : unknown item id
//   - [shared.ErrEmptyTitle], [shared.ErrEmptyLabel] : required text missing
//   - [shared.ErrInvalidURL] : link does not parse to an absolute URL with a host
//   - [shared.ErrCommitFailed] : the store rejected the change
package services
