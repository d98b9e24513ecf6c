package main

import (
	"context"

	"github.com/pkg/browser"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/ui"
)

// Play steps through a playlist in order. With --all every link is opened at once.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	_, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	open := r.open
	if open == nil {
		open = browser.OpenURL
	}

	if cmd.Bool("all") {
		items := p.SortedItems()
		opened := 0
		for _, it := range items {
			if err := open(it.URL); err != nil {
				r.logger.Error("failed to open link", "url", it.URL, "error", err)
				continue
			}
			opened++
		}
		r.writePlain("✓ Opened %d of %d links from %q\n", opened, len(items), p.Title)
		return nil
	}

	logger, err := r.tuiLogger()
	if err != nil {
		return err
	}

	_, err = r.runTUI(ui.NewPlayerModel(p, open, logger))
	return err
}
