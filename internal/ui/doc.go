// Package ui implements the interactive terminal views using bubbletea's Elm architecture.
//
// Two programs live here:
//  1. [ShareModel] : the share sheet. Pick a playlist from the published index, edit the label, save.
//     Saving appends to the inbox queue; the sheet reports completion even when the write fails, and the
//     failure only reaches the log.
//  2. [PlayerModel] : a pager over one playlist's links in order. The current link opens in the system
//     browser.
//
// Both models implement bubbletea's standard Init/Update/View pattern, receiving messages via the [Msg]
// union type. Keyboard navigation uses vim-style bindings with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
