package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/linkreel/internal/formatter"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/services"
	"github.com/desertthunder/linkreel/internal/shared"
)

// playlistSummary is the list view of a playlist.
type playlistSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Items     int    `json:"items"`
	Kind      string `json:"background"`
	UpdatedAt string `json:"updated_at"`
}

// PlaylistCreate creates an empty playlist and republishes the index.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	title, err := requireArg(cmd, "title")
	if err != nil {
		return err
	}

	lib, err := r.host()
	if err != nil {
		return err
	}

	p, err := lib.CreatePlaylist(ctx, title)
	if err != nil {
		return err
	}

	r.writePlain("✓ Created playlist %q (%s)\n", p.Title, p.ID)
	return nil
}

// PlaylistList prints every playlist, most recently updated first.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.host()
	if err != nil {
		return err
	}

	playlists, err := lib.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	summaries := lo.Map(playlists, func(p *models.Playlist, _ int) playlistSummary {
		return playlistSummary{
			ID:        p.ID,
			Title:     p.Title,
			Items:     len(p.Items),
			Kind:      string(p.Appearance.Kind),
			UpdatedAt: p.UpdatedAt.Format("2006-01-02 15:04"),
		}
	})

	if cmd.Bool("json") {
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	if len(summaries) == 0 {
		r.writePlain("No playlists yet. Create one with 'linkreel playlist create <title>'.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(summaries)))
	for _, s := range summaries {
		r.writePlain("%-36s  %-30s  %3d links  %s\n", s.ID, s.Title, s.Items, s.UpdatedAt)
	}
	return nil
}

// PlaylistShow prints one playlist with its links in order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	_, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if !cmd.Bool("pretty") {
			return r.writeJSON(p, false)
		}
		data, err := formatter.ExportToJSON(p)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlainHeader(p.Title)
	r.writePlain("ID: %s\n", p.ID)
	r.writePlain("Background: %s\n", p.Appearance.Kind)
	r.writePlain("Updated: %s\n\n", p.UpdatedAt.Format("2006-01-02 15:04"))

	items := p.SortedItems()
	if len(items) == 0 {
		r.writePlain("No links yet.\n")
		return nil
	}
	for i, it := range items {
		r.writePlain("%3d. %s\n     %s\n", i+1, it.DisplayLabel(), it.URL)
	}
	return nil
}

// PlaylistRename changes a playlist's title.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	title, err := requireArg(cmd, "title")
	if err != nil {
		return err
	}
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	renamed, err := lib.RenamePlaylist(ctx, p.ID, title)
	if err != nil {
		return err
	}

	r.writePlain("✓ Renamed to %q\n", renamed.Title)
	return nil
}

// PlaylistDelete removes a playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	if err := lib.DeletePlaylist(ctx, p.ID); err != nil {
		return err
	}

	r.writePlain("✓ Deleted playlist %q\n", p.Title)
	return nil
}

// PlaylistBackground sets the playlist appearance.
func (r *Runner) PlaylistBackground(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseBackgroundKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	appearance := models.Appearance{Kind: kind}
	switch kind {
	case models.BackgroundColor:
		if cmd.String("color") == "" {
			return fmt.Errorf("%w: --color", shared.ErrMissingArgument)
		}
		c, err := models.ParseHexColor(cmd.String("color"))
		if err != nil {
			return err
		}
		appearance.Color = &c
	case models.BackgroundPhoto:
		if cmd.String("image") == "" {
			return fmt.Errorf("%w: --image", shared.ErrMissingArgument)
		}
		data, err := os.ReadFile(cmd.String("image"))
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		appearance.Image = data
	}

	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	if _, err := lib.SetAppearance(ctx, p.ID, appearance); err != nil {
		return err
	}

	r.writePlain("✓ Background of %q set to %s\n", p.Title, kind)
	return nil
}

// PlaylistExport writes a playlist in one of the supported formats.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	_, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	format := strings.ToLower(cmd.String("format"))

	r.logger.Info("exporting playlist", "id", p.ID, "format", format)

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(p, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ CSV export complete\n  Items:    %s\n  Metadata: %s\n", result.ItemsFile, result.MetadataFile)
	case "md", "markdown":
		result, err := formatter.WriteMarkdownExport(p, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Markdown export complete: %s\n", result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
	case "txt", "text":
		path, err := formatter.WriteTextExport(p, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Text export complete: %s\n", path)
	case "json":
		path, err := formatter.WriteJSONExport(p, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ JSON export complete: %s\n", path)
	case "bookmarks", "html":
		if output == "" {
			output = p.ID + ".html"
		}
		data, err := formatter.ExportToBookmarksHTML([]*models.Playlist{p})
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write bookmarks file: %w", err)
		}
		r.writePlain("✓ Bookmarks export complete: %s\n", output)
	default:
		return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
	return nil
}

// PlaylistImport appends links from a browser bookmarks export.
func (r *Runner) PlaylistImport(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "file")
	if err != nil {
		return err
	}
	lib, p, err := r.playlistArg(ctx, cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open bookmarks file: %w", err)
	}
	defer f.Close()

	result, err := lib.ImportBookmarks(ctx, p.ID, f, cmd.String("folder"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Imported %d links into %q\n", len(result.Added), p.Title)
	if len(result.Skipped) > 0 {
		r.writePlain("Skipped %d bookmarks without a usable link:\n", len(result.Skipped))
		for _, b := range result.Skipped {
			r.writePlain("  %s (%s)\n", b.Title, b.URL)
		}
	}
	return nil
}

// playlistArg resolves the "playlist" argument by id or title.
func (r *Runner) playlistArg(ctx context.Context, cmd *cli.Command) (*services.Library, *models.Playlist, error) {
	query, err := requireArg(cmd, "playlist")
	if err != nil {
		return nil, nil, err
	}

	lib, err := r.host()
	if err != nil {
		return nil, nil, err
	}

	p, err := lib.FindPlaylist(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return lib, p, nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}
