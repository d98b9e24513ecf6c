package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// ItemAdd appends a labeled link to a playlist.
func (r *Runner) ItemAdd(ctx context.Context, cmd *cli.Command) error {
	rawURL, err := requireArg(cmd, "url")
	if err != nil {
		return err
	}
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	item, err := lib.AddItem(ctx, p.ID, cmd.String("label"), rawURL)
	if err != nil {
		return err
	}

	r.writePlain("✓ Added %q to %q at position %d\n", item.Label, p.Title, item.OrderIndex+1)
	return nil
}

// ItemEdit changes the label and/or URL of one link.
func (r *Runner) ItemEdit(ctx context.Context, cmd *cli.Command) error {
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}
	item, err := itemArg(cmd, p)
	if err != nil {
		return err
	}

	label := cmd.String("label")
	if label == "" {
		label = item.Label
	}

	edited, err := lib.EditItem(ctx, p.ID, item.ID, label, cmd.String("url"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated %q\n     %s\n", edited.Label, edited.URL)
	return nil
}

// ItemDelete removes one link; the remaining links close the gap.
func (r *Runner) ItemDelete(ctx context.Context, cmd *cli.Command) error {
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}
	item, err := itemArg(cmd, p)
	if err != nil {
		return err
	}

	if err := lib.DeleteItem(ctx, p.ID, item.ID); err != nil {
		return err
	}

	r.writePlain("✓ Removed %q from %q\n", item.DisplayLabel(), p.Title)
	return nil
}

// ItemMove reorders a playlist. Positions on the command line are 1-based.
func (r *Runner) ItemMove(ctx context.Context, cmd *cli.Command) error {
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	from, err := positionArg(cmd, "from")
	if err != nil {
		return err
	}
	to, err := positionArg(cmd, "to")
	if err != nil {
		return err
	}

	moved, err := lib.MoveItem(ctx, p.ID, from, to)
	if err != nil {
		return err
	}

	for i, it := range moved.SortedItems() {
		r.writePlain("%3d. %s\n", i+1, it.DisplayLabel())
	}
	return nil
}

// itemArg resolves the "item" argument, which holds either a 1-based position or an item id.
func itemArg(cmd *cli.Command, p *models.Playlist) (*models.Item, error) {
	raw, err := requireArg(cmd, "item")
	if err != nil {
		return nil, err
	}
	if pos, err := strconv.Atoi(raw); err == nil {
		return p.ItemAt(pos - 1)
	}
	return p.Item(raw)
}

// positionArg converts a 1-based position argument into a zero-based index. An omitted argument reads as 0.
func positionArg(cmd *cli.Command, name string) (int, error) {
	pos := cmd.IntArg(name)
	if pos < 1 {
		return 0, fmt.Errorf("%w: %s must be a position starting at 1", shared.ErrInvalidPosition, name)
	}
	return pos - 1, nil
}
