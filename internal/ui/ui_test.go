package ui

import (
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/linkreel/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestShareModel(t *testing.T) {
	entries := []models.IndexEntry{
		{ID: "11111111-1111-1111-1111-111111111111", Title: "Talks"},
		{ID: "22222222-2222-2222-2222-222222222222", Title: "Music"},
	}

	t.Run("pick then save", func(t *testing.T) {
		var gotEntry models.IndexEntry
		var gotLabel string
		share := func(e models.IndexEntry, label string) (models.InboxRecord, error) {
			gotEntry, gotLabel = e, label
			return models.InboxRecord{ID: "r1", PlaylistID: e.ID, Label: label}, nil
		}
		m := NewShareModel(entries, "https://example.com/v", "Intro", nil, share, quietLogger())
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != LabelView {
			t.Fatalf("expected label view, got %d", m.view)
		}
		if m.chosen.Title != "Music" {
			t.Fatalf("expected Music chosen, got %q", m.chosen.Title)
		}

		m.Update(runes("!"))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			t.Fatal("expected save command")
		}
		_, cmd = m.Update(cmd())

		if !isQuit(cmd) {
			t.Error("expected quit after save")
		}
		if !m.Saved() || m.Err() != nil {
			t.Fatalf("expected clean save, got saved=%v err=%v", m.Saved(), m.Err())
		}
		if gotEntry.ID != entries[1].ID || gotLabel != "Intro!" {
			t.Errorf("unexpected share call: %+v %q", gotEntry, gotLabel)
		}
		if m.Record().ID != "r1" {
			t.Errorf("expected record r1, got %q", m.Record().ID)
		}
		if !strings.Contains(m.View(), "Saved to Music") {
			t.Errorf("unexpected done view: %q", m.View())
		}
	})

	t.Run("failure still completes", func(t *testing.T) {
		share := func(models.IndexEntry, string) (models.InboxRecord, error) {
			return models.InboxRecord{}, errors.New("disk full")
		}
		pre := entries[0]
		m := NewShareModel(entries, "https://example.com/v", "", &pre, share, quietLogger())
		if m.view != LabelView {
			t.Fatalf("preselected entry should open the label view")
		}

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		_, cmd = m.Update(cmd())

		if !isQuit(cmd) {
			t.Error("expected quit after failed save")
		}
		if !m.Saved() || m.Err() == nil {
			t.Fatalf("expected completion with error, got saved=%v err=%v", m.Saved(), m.Err())
		}
		if !strings.Contains(m.View(), "Saved to Talks") {
			t.Errorf("done view should not surface the failure: %q", m.View())
		}
	})

	t.Run("no entries", func(t *testing.T) {
		m := NewShareModel(nil, "https://example.com/v", "", nil, nil, quietLogger())
		if !strings.Contains(m.View(), "index publish") {
			t.Errorf("expected publish hint, got %q", m.View())
		}
		_, cmd := m.Update(runes("q"))
		if !isQuit(cmd) {
			t.Error("expected q to quit")
		}
	})

	t.Run("esc returns to picker", func(t *testing.T) {
		m := NewShareModel(entries, "https://example.com/v", "", nil, nil, quietLogger())
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(runes("q"))
		if m.input.Value() != "q" {
			t.Errorf("label view should accept typed q, got %q", m.input.Value())
		}
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != PickView {
			t.Errorf("expected pick view, got %d", m.view)
		}
	})
}

func TestPlayerModel(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	newPlaylist := func(t *testing.T, links ...string) *models.Playlist {
		t.Helper()
		p, err := models.NewPlaylist("Talks", now)
		if err != nil {
			t.Fatalf("NewPlaylist failed: %v", err)
		}
		for i, raw := range links {
			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("bad url %q: %v", raw, err)
			}
			label := ""
			if i == 0 {
				label = "First"
			}
			p.AddItem(label, u, now)
		}
		return p
	}

	t.Run("navigation is bounded", func(t *testing.T) {
		p := newPlaylist(t, "https://a.example/1", "https://b.example/2", "https://c.example/3")
		m := NewPlayerModel(p, func(string) error { return nil }, quietLogger())

		if i, n := m.Position(); i != 1 || n != 3 {
			t.Fatalf("expected 1 / 3, got %d / %d", i, n)
		}
		m.Update(runes("p"))
		if i, _ := m.Position(); i != 1 {
			t.Errorf("prev at start should stay, got %d", i)
		}
		m.Update(runes("n"))
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
		m.Update(runes("n"))
		if i, _ := m.Position(); i != 3 {
			t.Errorf("expected to stop at 3, got %d", i)
		}
		if m.Current().URL != "https://c.example/3" {
			t.Errorf("unexpected current item %q", m.Current().URL)
		}
		m.Update(runes("h"))
		if i, _ := m.Position(); i != 2 {
			t.Errorf("expected 2 after prev, got %d", i)
		}
	})

	t.Run("view shows label and host", func(t *testing.T) {
		p := newPlaylist(t, "https://a.example/1", "https://b.example/2")
		m := NewPlayerModel(p, func(string) error { return nil }, quietLogger())

		view := m.View()
		for _, want := range []string{"Talks", "1 / 2", "First", "a.example"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q: %s", want, view)
			}
		}

		m.Update(runes("n"))
		if !strings.Contains(m.View(), "https://b.example/2") {
			t.Errorf("unlabeled item should show its URL")
		}
	})

	t.Run("open", func(t *testing.T) {
		p := newPlaylist(t, "https://a.example/1")
		var opened []string
		m := NewPlayerModel(p, func(u string) error {
			opened = append(opened, u)
			return nil
		}, quietLogger())

		_, cmd := m.Update(runes("o"))
		if cmd == nil {
			t.Fatal("expected open command")
		}
		m.Update(cmd())
		if len(opened) != 1 || opened[0] != "https://a.example/1" {
			t.Errorf("unexpected opened urls %v", opened)
		}
		if !strings.Contains(m.View(), "opened https://a.example/1") {
			t.Errorf("expected opened status in view")
		}
	})

	t.Run("open failure", func(t *testing.T) {
		p := newPlaylist(t, "https://a.example/1")
		m := NewPlayerModel(p, func(string) error { return errors.New("no browser") }, quietLogger())

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(cmd())
		if !m.failed || !strings.Contains(m.View(), "could not open") {
			t.Errorf("expected failure status, got %q", m.status)
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		m := NewPlayerModel(newPlaylist(t), nil, quietLogger())
		if m.Current() != nil {
			t.Fatal("expected no current item")
		}
		if _, cmd := m.Update(runes("o")); cmd != nil {
			t.Error("open on empty playlist should be a no-op")
		}
		if !strings.Contains(m.View(), "no links") {
			t.Errorf("expected empty hint")
		}
		_, cmd := m.Update(runes("q"))
		if !isQuit(cmd) {
			t.Error("expected q to quit")
		}
	})
}

func TestSwatch(t *testing.T) {
	if got := Swatch(models.Appearance{}); got != "" {
		t.Errorf("expected empty swatch, got %q", got)
	}
	if got := Swatch(models.Appearance{Kind: models.BackgroundPhoto, Image: make([]byte, 2048)}); !strings.Contains(got, "2.0 KB") {
		t.Errorf("expected photo size, got %q", got)
	}
}
