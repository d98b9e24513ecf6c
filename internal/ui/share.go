package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/linkreel/internal/models"
)

// ShareView represents the current view in the share sheet.
type ShareView int

const (
	PickView ShareView = iota
	LabelView
	DoneView
)

// ShareFunc appends one record to the inbox queue.
type ShareFunc func(entry models.IndexEntry, label string) (models.InboxRecord, error)

// ShareModel is the share sheet: choose a destination playlist, edit the label, save.
type ShareModel struct {
	view    ShareView
	url     string
	entries []models.IndexEntry
	chosen  models.IndexEntry
	list    list.Model
	input   textinput.Model
	share   ShareFunc
	logger  *log.Logger
	record  models.InboxRecord
	err     error
	saved   bool
	width   int
	height  int
	help    help.Model
	keys    keyMap
}

// NewShareModel builds the sheet for rawURL. A non-nil preselected entry skips the picker.
func NewShareModel(entries []models.IndexEntry, rawURL, label string, preselected *models.IndexEntry, share ShareFunc, logger *log.Logger) *ShareModel {
	input := textinput.New()
	input.Placeholder = "Label"
	input.CharLimit = 200
	input.SetValue(label)

	l := list.New(entryItems(entries), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Share to playlist"
	l.SetShowHelp(false)

	m := &ShareModel{
		view:    PickView,
		url:     rawURL,
		entries: entries,
		list:    l,
		input:   input,
		share:   share,
		logger:  logger,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	if preselected != nil {
		m.choose(*preselected)
	}
	return m
}

func (m *ShareModel) Init() tea.Cmd {
	if m.view == LabelView {
		return textinput.Blink
	}
	return nil
}

func (m *ShareModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		m.input.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PickView:
			return m.handlePickKeys(msg)
		case LabelView:
			return m.handleLabelKeys(msg)
		case DoneView:
			return m, tea.Quit
		}

	case Msg:
		if msg.kind == MsgShared {
			data := msg.data.(sharedData)
			m.record = data.record
			m.err = data.err
			m.saved = true
			if data.err != nil {
				m.logger.Warn("share failed", "playlist", data.entry.ID, "url", m.url, "error", data.err)
			} else {
				m.logger.Info("shared", "playlist", data.entry.ID, "record", data.record.ID)
			}
			m.view = DoneView
			return m, tea.Quit
		}
	}

	return m.updateChildren(msg)
}

func (m *ShareModel) handlePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.list.SelectedItem().(entryItem); ok {
			m.choose(item.entry)
			return m, textinput.Blink
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *ShareModel) handleLabelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if len(m.entries) == 0 {
			return m, tea.Quit
		}
		m.input.Blur()
		m.view = PickView
		return m, nil
	case tea.KeyEnter:
		return m, m.save()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ShareModel) choose(entry models.IndexEntry) {
	m.chosen = entry
	m.view = LabelView
	m.input.Focus()
}

func (m *ShareModel) save() tea.Cmd {
	entry := m.chosen
	label := strings.TrimSpace(m.input.Value())
	share := m.share
	return func() tea.Msg {
		record, err := share(entry, label)
		return sharedMsg(entry, record, err)
	}
}

func (m *ShareModel) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PickView:
		m.list, cmd = m.list.Update(msg)
	case LabelView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *ShareModel) View() string {
	switch m.view {
	case PickView:
		if len(m.entries) == 0 {
			return styles.frame.Render(fmt.Sprintf("%s\n\n%s\n\n%s",
				styles.title.Render("Share to playlist"),
				styles.warn.Render("No playlists published yet."),
				styles.help.Render("Run `linkreel index publish` on the host, then try again. Press q to quit."),
			))
		}
		return fmt.Sprintf("%s\n%s\n%s", m.list.View(), styles.muted.Render(m.url), m.help.View(m.keys))
	case LabelView:
		return styles.frame.Render(fmt.Sprintf("%s\n%s\n\n%s\n\n%s",
			styles.title.Render(m.chosen.Title),
			styles.muted.Render(m.url),
			m.input.View(),
			styles.help.Render("enter save • esc back • ctrl+c cancel"),
		))
	case DoneView:
		return styles.frame.Render(styles.ok.Render(fmt.Sprintf("Saved to %s", m.chosen.Title)))
	}
	return ""
}

// Saved reports whether the sheet reached completion.
func (m *ShareModel) Saved() bool { return m.saved }

// Record returns the enqueued record; Err the enqueue failure, if any.
func (m *ShareModel) Record() models.InboxRecord { return m.record }
func (m *ShareModel) Err() error                 { return m.err }
