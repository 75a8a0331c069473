package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tdx/internal/tasks"
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
	MsgSyncEvent MsgKind = iota
	MsgOpDone
	MsgEventsClosed
)

// syncEventMsg is the constructor for [MsgSyncEvent]
func syncEventMsg(ev tasks.Event) Msg {
	return Msg{kind: MsgSyncEvent, data: ev}
}

// opResult is the payload of [MsgOpDone].
type opResult struct {
	op  tasks.Op
	err error
}

// opDoneMsg is the constructor for [MsgOpDone]
func opDoneMsg(op tasks.Op, err error) Msg {
	return Msg{kind: MsgOpDone, data: opResult{op: op, err: err}}
}

// eventsClosedMsg is the constructor for [MsgEventsClosed]
func eventsClosedMsg() Msg {
	return Msg{kind: MsgEventsClosed}
}
