package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/pkg/browser"

	"github.com/desertthunder/linkreel/internal/models"
)

// OpenFunc hands a URL to something that can show it.
type OpenFunc func(url string) error

// PlayerModel pages through a playlist's links in order.
type PlayerModel struct {
	title      string
	appearance models.Appearance
	items      []*models.Item
	pos        int
	open       OpenFunc
	logger     *log.Logger
	status     string
	failed     bool
	width      int
	help       help.Model
	keys       keyMap
}

// NewPlayerModel creates a player positioned on the first item. A nil open uses the system browser.
func NewPlayerModel(p *models.Playlist, open OpenFunc, logger *log.Logger) *PlayerModel {
	if open == nil {
		open = browser.OpenURL
	}
	return &PlayerModel{
		title:      p.Title,
		appearance: p.Appearance,
		items:      p.SortedItems(),
		open:       open,
		logger:     logger,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *PlayerModel) Init() tea.Cmd { return nil }

func (m *PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
			return m, tea.Quit
		case key.Matches(msg, m.keys.next):
			m.step(1)
		case key.Matches(msg, m.keys.prev):
			m.step(-1)
		case key.Matches(msg, m.keys.open):
			return m, m.openCurrent()
		}
		return m, nil

	case Msg:
		if msg.kind == MsgOpened {
			data := msg.data.(openedData)
			if data.err != nil {
				m.logger.Error("open failed", "url", data.url, "error", data.err)
				m.status = fmt.Sprintf("could not open %s", data.url)
				m.failed = true
			} else {
				m.status = fmt.Sprintf("opened %s", data.url)
				m.failed = false
			}
		}
	}
	return m, nil
}

func (m *PlayerModel) step(delta int) {
	if len(m.items) == 0 {
		return
	}
	next := m.pos + delta
	if next < 0 || next >= len(m.items) {
		return
	}
	m.pos = next
	m.status = ""
}

func (m *PlayerModel) openCurrent() tea.Cmd {
	item := m.Current()
	if item == nil {
		return nil
	}
	open := m.open
	target := item.URL
	return func() tea.Msg {
		return openedMsg(target, open(target))
	}
}

// Current returns the item under the cursor, or nil for an empty playlist.
func (m *PlayerModel) Current() *models.Item {
	if len(m.items) == 0 {
		return nil
	}
	return m.items[m.pos]
}

// Position returns the 1-based cursor position and the item count.
func (m *PlayerModel) Position() (int, int) {
	if len(m.items) == 0 {
		return 0, 0
	}
	return m.pos + 1, len(m.items)
}

func (m *PlayerModel) View() string {
	var b strings.Builder

	header := styles.title.Render(m.title)
	if swatch := Swatch(m.appearance); swatch != "" {
		header = swatch + " " + header
	}
	b.WriteString(header + "\n")

	item := m.Current()
	if item == nil {
		b.WriteString(styles.warn.Render("This playlist has no links yet.") + "\n\n")
		b.WriteString(m.help.View(m.keys))
		return styles.frame.Render(b.String())
	}

	i, n := m.Position()
	fmt.Fprintf(&b, "%s\n\n", styles.muted.Render(fmt.Sprintf("%d / %d", i, n)))
	fmt.Fprintf(&b, "%s\n", styles.ok.Render(item.DisplayLabel()))
	if host := item.Host(); host != "" {
		fmt.Fprintf(&b, "%s\n", styles.muted.Render(host))
	}
	fmt.Fprintf(&b, "%s\n", styles.help.Render(item.URL))

	if m.status != "" {
		style := styles.ok
		if m.failed {
			style = styles.err
		}
		fmt.Fprintf(&b, "\n%s\n", style.Render(m.status))
	}
	fmt.Fprintf(&b, "\n%s", m.help.View(m.keys))
	return styles.frame.Render(b.String())
}
