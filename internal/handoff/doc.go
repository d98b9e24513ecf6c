// Package handoff implements the shared storage area used by the host and share roles.
//
// The two roles never share memory. The host publishes an index snapshot of playlist ids and titles;
// the share command reads that snapshot to pick a target and appends records to the inbox queue, which
// the host later drains. Both artifacts are JSON files replaced whole through [WriteFileAtomic], so a
// reader sees either the previous or the next complete document, never a torn one.
//
// Layout under the container root:
//
//	<root>/playlists_index.json
//	<root>/Inbox/queue.json
//
// There is no cross-process lock. A drain racing an enqueue can lose the appended record; the
// acknowledged delivery policy in package tasks narrows that window by re-reading before rewriting.
package handoff
