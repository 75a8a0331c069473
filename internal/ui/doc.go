// Package ui implements an interactive terminal interface over the task list using bubbletea's Elm architecture.
//
// The (view) [Model] renders a snapshot of [tasks.State] and turns key presses into synchronizer calls:
//   - a: focus the input for a new item, enter submits it
//   - space/x: toggle the selected item
//   - e: rename the selected item in place; every keystroke is a coalesced edit
//   - d: delete the selected item
//   - 1/2/3 or tab: show All, Active or Completed items
//
// Operations that wait on the store run as [tea.Cmd]s. State change notifications flow through the
// synchronizer's event channel and are read one at a time, the same way progress updates are consumed.
package ui
