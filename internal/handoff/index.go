package handoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// WriteIndex atomically replaces the index snapshot with entries.
func (c *Container) WriteIndex(entries []models.IndexEntry) error {
	if entries == nil {
		entries = []models.IndexEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := c.EnsureFolders(); err != nil {
		return err
	}
	return WriteFileAtomic(c.IndexPath(), data, 0o644)
}

// ReadIndex returns the published entries. A missing snapshot wraps [shared.ErrNoIndex].
func (c *Container) ReadIndex() ([]models.IndexEntry, error) {
	data, err := os.ReadFile(c.IndexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoIndex, c.IndexPath())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var entries []models.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return entries, nil
}

// ResolveEntry finds the entry whose id matches query, or whose title matches it case-insensitively.
//
// Ids are compared in canonical form so upper-case ids written by other clients still match.
func ResolveEntry(entries []models.IndexEntry, query string) (models.IndexEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.IndexEntry{}, fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	if id, err := shared.CanonicalID(query); err == nil {
		for _, e := range entries {
			if canon, err := shared.CanonicalID(e.ID); err == nil && canon == id {
				return e, nil
			}
		}
	}

	var matches []models.IndexEntry
	for _, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Title), query) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return models.IndexEntry{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, query)
	case 1:
		return matches[0], nil
	default:
		return models.IndexEntry{}, fmt.Errorf("%w: %d playlists titled %q", shared.ErrAmbiguousMatch, len(matches), query)
	}
}
