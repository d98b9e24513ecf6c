package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/server"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.host()
	if err != nil {
		return err
	}

	container := r.sharedContainer()
	if err := container.EnsureFolders(); err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv := server.NewServer(lib, container, handoff.NewEnqueuer(container, r.logger), r.logger)
	return srv.ListenAndServe(ctx, addr)
}
