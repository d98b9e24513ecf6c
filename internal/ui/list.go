package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/linkreel/internal/models"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.IndexEntry] to implement [list.Item].
type entryItem struct {
	entry models.IndexEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string       { return i.entry.Title }
func (i entryItem) Description() string { return i.entry.ID }

func entryItems(entries []models.IndexEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}
