package models

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/linkreel/internal/shared"
)

// BackgroundKind selects how a playlist is painted.
type BackgroundKind string

const (
	BackgroundNone  BackgroundKind = "none"
	BackgroundColor BackgroundKind = "color"
	BackgroundPhoto BackgroundKind = "photo"
)

// ParseBackgroundKind validates s as a [BackgroundKind].
func ParseBackgroundKind(s string) (BackgroundKind, error) {
	switch k := BackgroundKind(strings.ToLower(strings.TrimSpace(s))); k {
	case BackgroundNone, BackgroundColor, BackgroundPhoto:
		return k, nil
	case "":
		return BackgroundNone, nil
	default:
		return "", fmt.Errorf("%w: unknown background kind %q", shared.ErrInvalidArgument, s)
	}
}

// RGBA is a color with components in [0, 1].
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// ParseHexColor reads "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return RGBA{}, fmt.Errorf("%w: color %q must be #rrggbb or #rrggbbaa", shared.ErrInvalidArgument, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	var r, g, b, a uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
		return RGBA{}, fmt.Errorf("%w: color %q: %v", shared.ErrInvalidArgument, s, err)
	}
	return RGBA{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: float64(a) / 255}, nil
}

// Hex renders the color as "#rrggbbaa".
func (c RGBA) Hex() string {
	to := func(v float64) uint8 { return uint8(min(max(v, 0), 1)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x%02x", to(c.R), to(c.G), to(c.B), to(c.A))
}

// Appearance describes a playlist's background.
type Appearance struct {
	Kind  BackgroundKind `json:"kind"`
	Color *RGBA          `json:"color,omitempty"`
	Image []byte         `json:"-"`
}

// Validate checks that the payload matches the kind.
func (a Appearance) Validate() error {
	switch a.Kind {
	case BackgroundNone, "":
		return nil
	case BackgroundColor:
		if a.Color == nil {
			return fmt.Errorf("%w: color background needs a color", shared.ErrInvalidInput)
		}
	case BackgroundPhoto:
		if len(a.Image) == 0 {
			return fmt.Errorf("%w: photo background needs image data", shared.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown background kind %q", shared.ErrInvalidInput, a.Kind)
	}
	return nil
}

// Playlist is a titled, ordered collection of video links.
type Playlist struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"-"`
	Title      string     `json:"title"`
	Items      []*Item    `json:"items"`
	Appearance Appearance `json:"appearance"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewPlaylist creates a playlist with a fresh id. The title is trimmed and must not be empty.
func NewPlaylist(title string, now time.Time) (*Playlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrEmptyTitle
	}
	return &Playlist{
		ID:         shared.GenerateID(),
		Title:      title,
		Appearance: Appearance{Kind: BackgroundNone},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Touch marks the playlist as updated at now.
func (p *Playlist) Touch(now time.Time) {
	p.UpdatedAt = now
}

// Rename sets a new trimmed, non-empty title.
func (p *Playlist) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.ErrEmptyTitle
	}
	p.Title = title
	p.Touch(now)
	return nil
}

// Entry projects the playlist to its index snapshot form.
func (p *Playlist) Entry() IndexEntry {
	return IndexEntry{ID: p.ID, Title: p.Title}
}

// SortedItems returns the items ordered by order index. The returned slice is a copy.
func (p *Playlist) SortedItems() []*Item {
	sorted := slices.Clone(p.Items)
	slices.SortStableFunc(sorted, func(a, b *Item) int { return a.OrderIndex - b.OrderIndex })
	return sorted
}

// NextOrderIndex is one past the highest order index, or 0 for an empty playlist.
func (p *Playlist) NextOrderIndex() int {
	next := 0
	for _, it := range p.Items {
		if it.OrderIndex+1 > next {
			next = it.OrderIndex + 1
		}
	}
	return next
}

// AddItem appends a new item owned by p at the next order index and touches the playlist.
func (p *Playlist) AddItem(label string, u *url.URL, now time.Time) *Item {
	item := &Item{
		ID:         shared.GenerateID(),
		PlaylistID: p.ID,
		Label:      label,
		URL:        u.String(),
		OrderIndex: p.NextOrderIndex(),
		CreatedAt:  now,
	}
	p.Items = append(p.Items, item)
	p.Touch(now)
	return item
}

// Item returns the item with the given id.
func (p *Playlist) Item(id string) (*Item, error) {
	for _, it := range p.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
}

// ItemAt returns the item at a zero-based position in order-index order.
func (p *Playlist) ItemAt(pos int) (*Item, error) {
	sorted := p.SortedItems()
	if pos < 0 || pos >= len(sorted) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", shared.ErrInvalidPosition, pos, len(sorted))
	}
	return sorted[pos], nil
}

// RemoveItem detaches the item with the given id and renumbers the rest.
func (p *Playlist) RemoveItem(id string, now time.Time) (*Item, error) {
	idx := slices.IndexFunc(p.Items, func(it *Item) bool { return it.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}

	removed := p.Items[idx]
	p.Items = slices.Delete(p.Items, idx, idx+1)
	p.Renumber()
	p.Touch(now)
	return removed, nil
}

// MoveItem moves the item at position from to position to (both in order-index order) and renumbers.
func (p *Playlist) MoveItem(from, to int, now time.Time) error {
	sorted := p.SortedItems()
	n := len(sorted)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: from %d not in [0, %d)", shared.ErrInvalidPosition, from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: to %d not in [0, %d)", shared.ErrInvalidPosition, to, n)
	}

	moved := sorted[from]
	sorted = slices.Delete(sorted, from, from+1)
	sorted = slices.Insert(sorted, to, moved)
	for i, it := range sorted {
		it.OrderIndex = i
	}
	p.Items = sorted
	p.Touch(now)
	return nil
}

// Renumber rewrites order indexes to 0..n-1 following the current sort order.
func (p *Playlist) Renumber() {
	sorted := p.SortedItems()
	for i, it := range sorted {
		it.OrderIndex = i
	}
	p.Items = sorted
}

// Validate checks the playlist and its items, including order-index density.
func (p *Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Title) == "" {
		return shared.ErrEmptyTitle
	}
	if err := p.Appearance.Validate(); err != nil {
		return err
	}

	for i, it := range p.SortedItems() {
		if it.PlaylistID != p.ID {
			return fmt.Errorf("%w: item %s belongs to %s, not %s", shared.ErrInvalidInput, it.ID, it.PlaylistID, p.ID)
		}
		if it.OrderIndex != i {
			return fmt.Errorf("%w: item %s has order index %d at position %d", shared.ErrInvalidInput, it.ID, it.OrderIndex, i)
		}
		if _, err := ParseItemURL(it.URL); err != nil {
			return err
		}
	}
	return nil
}

// Item is a single labeled video link inside a playlist.
type Item struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	Label      string    `json:"label"`
	URL        string    `json:"url"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// Host returns the URL host for display, or "" when the URL doesn't parse.
func (it *Item) Host() string {
	u, err := url.Parse(it.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// DisplayLabel falls back to the URL when the label is empty.
func (it *Item) DisplayLabel() string {
	if it.Label != "" {
		return it.Label
	}
	return it.URL
}
