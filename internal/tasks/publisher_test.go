package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
	tu "github.com/desertthunder/linkreel/internal/testing"
)

func TestPublish(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		h := newHarness(t)
		a := h.playlist(t, "A")
		b := h.playlist(t, "B")

		if _, err := NewPublisher(h.container, h.store, h.logger).Publish(context.Background(), nil); err != nil {
			t.Fatalf("publish failed: %v", err)
		}

		entries, err := h.container.ReadIndex()
		if err != nil {
			t.Fatalf("failed to read index: %v", err)
		}
		want := map[models.IndexEntry]bool{{ID: a.ID, Title: "A"}: true, {ID: b.ID, Title: "B"}: true}
		if len(entries) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(entries))
		}
		for _, e := range entries {
			if !want[e] {
				t.Errorf("unexpected entry %+v", e)
			}
		}
	})

	t.Run("ReflectsRenameAndDelete", func(t *testing.T) {
		h := newHarness(t)
		a := h.playlist(t, "A")
		b := h.playlist(t, "B")
		publisher := NewPublisher(h.container, h.store, h.logger)

		tracked, _ := h.store.FetchByID(a.ID)
		if err := tracked.Rename("Renamed", epoch); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		gone, _ := h.store.FetchByID(b.ID)
		h.store.DeletePlaylist(gone)
		if err := h.store.Commit(); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		result, err := publisher.Publish(context.Background(), nil)
		if err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if len(result.Entries) != 1 || result.Entries[0] != (models.IndexEntry{ID: a.ID, Title: "Renamed"}) {
			t.Errorf("unexpected entries: %+v", result.Entries)
		}
	})

	t.Run("EmptyStore", func(t *testing.T) {
		h := newHarness(t)
		if _, err := NewPublisher(h.container, h.store, h.logger).Publish(context.Background(), nil); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if got := tu.MustReadFile(t, h.container.IndexPath()); got != "[]" {
			t.Errorf("expected [], got %s", got)
		}
	})

	t.Run("WriteFailureKeepsPreviousSnapshot", func(t *testing.T) {
		h := newHarness(t)
		h.playlist(t, "A")

		previous := `[{"id":"old","title":"Old"}]`
		tu.MustWriteFile(t, h.container.IndexPath(), previous)

		broken := handoff.NewContainer(filepath.Join(h.container.IndexPath(), "nested"))
		if _, err := NewPublisher(broken, h.store, h.logger).Publish(context.Background(), nil); err == nil {
			t.Fatal("expected publish error")
		}
		if got := tu.MustReadFile(t, h.container.IndexPath()); got != previous {
			t.Errorf("expected previous snapshot, got %s", got)
		}
	})

	t.Run("StoreFailure", func(t *testing.T) {
		h := newHarness(t)
		h.db.Close()

		_, err := NewPublisher(h.container, h.store, h.logger).Publish(context.Background(), nil)
		if err == nil {
			t.Fatal("expected error from closed store")
		}
		if _, err := h.container.ReadIndex(); !errors.Is(err, shared.ErrNoIndex) {
			t.Errorf("expected no index to be written, got %v", err)
		}
	})
}
