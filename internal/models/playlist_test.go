package models

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/desertthunder/linkreel/internal/shared"
)

var now = time.Date(2025, 8, 26, 12, 0, 0, 0, time.UTC)

func mustPlaylist(t *testing.T, title string, urls ...string) *Playlist {
	t.Helper()
	p, err := NewPlaylist(title, now)
	if err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	for _, raw := range urls {
		u, err := ParseItemURL(raw)
		if err != nil {
			t.Fatalf("bad fixture url %s: %v", raw, err)
		}
		p.AddItem(raw, u, now)
	}
	return p
}

// assertDense fails unless the sorted order indexes are exactly 0..n-1.
func assertDense(t *testing.T, p *Playlist) {
	t.Helper()
	for i, it := range p.SortedItems() {
		if it.OrderIndex != i {
			t.Fatalf("order index at position %d is %d", i, it.OrderIndex)
		}
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("playlist should validate: %v", err)
	}
}

func labels(p *Playlist) []string {
	var out []string
	for _, it := range p.SortedItems() {
		out = append(out, it.Label)
	}
	return out
}

func TestPlaylist(t *testing.T) {
	t.Run("NewPlaylist trims title", func(t *testing.T) {
		p, err := NewPlaylist("  Music Vids ", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Title != "Music Vids" {
			t.Errorf("expected trimmed title, got %q", p.Title)
		}
		if p.ID == "" {
			t.Error("expected generated id")
		}
		if p.Appearance.Kind != BackgroundNone {
			t.Errorf("expected no background, got %s", p.Appearance.Kind)
		}
	})

	t.Run("NewPlaylist rejects blank title", func(t *testing.T) {
		if _, err := NewPlaylist("   ", now); !errors.Is(err, shared.ErrEmptyTitle) {
			t.Errorf("expected ErrEmptyTitle, got %v", err)
		}
	})

	t.Run("AddItem continues from the highest index", func(t *testing.T) {
		p := mustPlaylist(t, "A")
		if p.NextOrderIndex() != 0 {
			t.Errorf("empty playlist should start at 0, got %d", p.NextOrderIndex())
		}

		u, _ := ParseItemURL("https://example.com/a")
		p.Items = append(p.Items, &Item{ID: "x", PlaylistID: p.ID, URL: u.String(), OrderIndex: 4})

		later := now.Add(time.Minute)
		it := p.AddItem("next", u, later)
		if it.OrderIndex != 5 {
			t.Errorf("expected order index 5, got %d", it.OrderIndex)
		}
		if it.PlaylistID != p.ID {
			t.Errorf("item should be owned by %s, got %s", p.ID, it.PlaylistID)
		}
		if !p.UpdatedAt.Equal(later) {
			t.Errorf("playlist should be touched, updated_at = %v", p.UpdatedAt)
		}
	})

	t.Run("RemoveItem renumbers", func(t *testing.T) {
		p := mustPlaylist(t, "A", "https://a.test/1", "https://a.test/2", "https://a.test/3", "https://a.test/4")
		second := p.SortedItems()[1]

		removed, err := p.RemoveItem(second.ID, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if removed.ID != second.ID {
			t.Errorf("removed the wrong item")
		}
		assertDense(t, p)

		got := labels(p)
		want := []string{"https://a.test/1", "https://a.test/3", "https://a.test/4"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("RemoveItem unknown id", func(t *testing.T) {
		p := mustPlaylist(t, "A", "https://a.test/1")
		if _, err := p.RemoveItem("missing", now); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("MoveItem", func(t *testing.T) {
		tc := []struct {
			name     string
			from, to int
			want     []string
		}{
			{name: "first to last", from: 0, to: 2, want: []string{"https://m.test/b", "https://m.test/c", "https://m.test/a"}},
			{name: "last to first", from: 2, to: 0, want: []string{"https://m.test/c", "https://m.test/a", "https://m.test/b"}},
			{name: "no-op", from: 1, to: 1, want: []string{"https://m.test/a", "https://m.test/b", "https://m.test/c"}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				p := mustPlaylist(t, "M", "https://m.test/a", "https://m.test/b", "https://m.test/c")
				if err := p.MoveItem(tt.from, tt.to, now); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				assertDense(t, p)
				got := labels(p)
				for i := range tt.want {
					if got[i] != tt.want[i] {
						t.Errorf("position %d: got %s, want %s", i, got[i], tt.want[i])
					}
				}
			})
		}
	})

	t.Run("MoveItem out of range", func(t *testing.T) {
		p := mustPlaylist(t, "M", "https://m.test/a")
		if err := p.MoveItem(0, 3, now); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition, got %v", err)
		}
	})

	t.Run("random deletes and moves stay dense", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		p := mustPlaylist(t, "R")
		for i := 0; i < 40; i++ {
			u, _ := ParseItemURL("https://r.test/item")
			p.AddItem("", u, now)
		}

		for step := 0; step < 200 && len(p.Items) > 0; step++ {
			n := len(p.Items)
			if rng.Intn(3) == 0 {
				victim := p.Items[rng.Intn(n)]
				if _, err := p.RemoveItem(victim.ID, now); err != nil {
					t.Fatalf("step %d: remove failed: %v", step, err)
				}
			} else if err := p.MoveItem(rng.Intn(n), rng.Intn(n), now); err != nil {
				t.Fatalf("step %d: move failed: %v", step, err)
			}
			assertDense(t, p)
		}
	})

	t.Run("Renumber closes gaps and keeps order", func(t *testing.T) {
		p := mustPlaylist(t, "G")
		for i, idx := range []int{9, 2, 5} {
			p.Items = append(p.Items, &Item{ID: string(rune('a' + i)), PlaylistID: p.ID, URL: "https://g.test", OrderIndex: idx})
		}
		p.Renumber()
		assertDense(t, p)
		if p.Items[0].ID != "b" || p.Items[1].ID != "c" || p.Items[2].ID != "a" {
			t.Errorf("renumber should follow previous order, got %s %s %s", p.Items[0].ID, p.Items[1].ID, p.Items[2].ID)
		}
	})

	t.Run("Validate catches foreign items", func(t *testing.T) {
		p := mustPlaylist(t, "V", "https://v.test/1")
		p.Items[0].PlaylistID = "someone-else"
		if err := p.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		p := mustPlaylist(t, "Old")
		if err := p.Rename(" ", now); !errors.Is(err, shared.ErrEmptyTitle) {
			t.Errorf("expected ErrEmptyTitle, got %v", err)
		}
		if err := p.Rename("New", now); err != nil || p.Title != "New" {
			t.Errorf("rename failed: %v, title %q", err, p.Title)
		}
	})
}

func TestAppearance(t *testing.T) {
	t.Run("ParseHexColor", func(t *testing.T) {
		c, err := ParseHexColor("#ff000080")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.R != 1 || c.G != 0 || c.B != 0 {
			t.Errorf("unexpected color %+v", c)
		}
		if c.Hex() != "#ff000080" {
			t.Errorf("expected round trip hex, got %s", c.Hex())
		}

		opaque, err := ParseHexColor("00ff00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opaque.A != 1 {
			t.Errorf("six digit colors should be opaque, got alpha %v", opaque.A)
		}

		if _, err := ParseHexColor("#abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := (Appearance{Kind: BackgroundColor}).Validate(); err == nil {
			t.Error("color background without a color should fail")
		}
		if err := (Appearance{Kind: BackgroundPhoto}).Validate(); err == nil {
			t.Error("photo background without image data should fail")
		}
		if err := (Appearance{Kind: BackgroundPhoto, Image: []byte{1}}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ParseBackgroundKind", func(t *testing.T) {
		if k, err := ParseBackgroundKind("Color"); err != nil || k != BackgroundColor {
			t.Errorf("got %v, %v", k, err)
		}
		if _, err := ParseBackgroundKind("gradient"); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}
