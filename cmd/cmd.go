// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database and config file setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the playlist database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file (default: the --config path)",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// playlistCommand handles playlist CRUD, appearance, export and import.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Action:    r.PlaylistCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List playlists, most recently updated first",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its links in order",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "rename",
				Usage: "Change a playlist's title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "title"},
				},
				Action: r.PlaylistRename,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a playlist and its links",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Action:    r.PlaylistDelete,
			},
			{
				Name:      "background",
				Aliases:   []string{"bg"},
				Usage:     "Set the playlist background (none, color or photo)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: "none, color or photo", Value: "none"},
					&cli.StringFlag{Name: "color", Usage: "Hex color (#rrggbb or #rrggbbaa) for --kind color"},
					&cli.StringFlag{Name: "image", Usage: "Image file for --kind photo"},
				},
				Action: r.PlaylistBackground,
			},
			{
				Name:      "export",
				Usage:     "Export a playlist to a file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, md, txt, json or bookmarks",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (file, base name or directory depending on format)",
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:  "import",
				Usage: "Import links from a browser bookmarks HTML file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Usage: "Only import bookmarks inside this folder"},
				},
				Action: r.PlaylistImport,
			},
		},
	}
}

// itemCommand handles the links inside a playlist.
func itemCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "item",
		Usage: "Manage the links in a playlist",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Append a link to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Link label", Required: true},
				},
				Action: r.ItemAdd,
			},
			{
				Name:  "edit",
				Usage: "Change a link's label or URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "item"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "New label (default: keep)"},
					&cli.StringFlag{Name: "url", Usage: "New URL (default: keep)"},
				},
				Action: r.ItemEdit,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Remove a link; the rest are renumbered",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "item"},
				},
				Action: r.ItemDelete,
			},
			{
				Name:    "move",
				Aliases: []string{"mv"},
				Usage:   "Move the link at position FROM to position TO (1-based)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.IntArg{Name: "from"},
					&cli.IntArg{Name: "to"},
				},
				Action: r.ItemMove,
			},
		},
	}
}

// shareCommand is the share role: it reads the index snapshot and appends to the inbox queue.
func shareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "share",
		Usage:     "Queue a link for a playlist without opening the database",
		Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Aliases: []string{"p"}, Usage: "Destination playlist id or title"},
			&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Link label"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Pick the playlist and label in a share sheet"},
		},
		Action: r.Share,
	}
}

// inboxCommand inspects and drains the inbox queue.
func inboxCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "inbox",
		Usage: "Inspect and drain the inbox queue",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the queued records",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.InboxShow,
			},
			{
				Name:   "drain",
				Usage:  "Apply queued records to the playlist store",
				Action: r.InboxDrain,
			},
		},
	}
}

// indexCommand publishes and inspects the index snapshot.
func indexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Publish and inspect the playlist index snapshot",
		Commands: []*cli.Command{
			{
				Name:   "publish",
				Usage:  "Rewrite the index snapshot from the playlist store",
				Action: r.IndexPublish,
			},
			{
				Name:  "show",
				Usage: "Print the published index",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.IndexShow,
			},
		},
	}
}

// foregroundCommand runs drain then publish once.
func foregroundCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "foreground",
		Aliases: []string{"fg", "sync"},
		Usage:   "Drain the inbox, then republish the index",
		Action:  r.Foreground,
	}
}

// watchCommand keeps running the foreground pipeline when the queue changes.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Drain the inbox whenever the queue file changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Usage: "Retry interval for throttled changes (default: watch.interval)"},
		},
		Action: r.Watch,
	}
}

// playCommand steps through a playlist's links.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Step through a playlist's links and open them in the browser",
		Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "Open every link without the player"},
		},
		Action: r.Play,
	}
}

// serveCommand starts the local HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the playlist API and metrics over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default: server.host:server.port)"},
		},
		Action: r.Serve,
	}
}
