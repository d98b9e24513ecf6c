package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/linkreel/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgShared MsgKind = iota
	MsgOpened
)

type sharedData struct {
	entry  models.IndexEntry
	record models.InboxRecord
	err    error
}

type openedData struct {
	url string
	err error
}

// sharedMsg is the constructor for [MsgShared]
func sharedMsg(entry models.IndexEntry, record models.InboxRecord, err error) Msg {
	return Msg{kind: MsgShared, data: sharedData{entry: entry, record: record, err: err}}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(url string, err error) Msg {
	return Msg{kind: MsgOpened, data: openedData{url: url, err: err}}
}
