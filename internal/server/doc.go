// Package server exposes the host role over a local HTTP API.
//
// # Routes
//
// The chi router built by [Server.Router] serves:
//
//	GET  /health            liveness
//	GET  /playlists         every playlist, most recently updated first
//	GET  /playlists/{id}    one playlist by id or title
//	GET  /index             the published index snapshot
//	POST /share             append a record to the inbox queue (share role)
//	POST /foreground        drain the inbox, then republish the index
//	GET  /metrics           prometheus exposition
//
// # Middleware
//
// [Middleware] has the standard func(http.Handler) http.Handler shape so chi's own middleware and the
// [RequestLogger] and [Metrics] wrappers defined here mix freely. Metrics are labelled with the chi
// route pattern rather than the raw path to keep cardinality bounded.
//
// The share endpoint only touches the shared container; it never reads the playlist store, mirroring
// the command-line share role.
package server
