package tasks

import (
	"fmt"

	"github.com/desertthunder/tdx/internal/models"
)

// Event notifies the render surface that state changed or that a store call failed.
type Event struct {
	Kind   EventKind
	Op     Op    // Operation that produced the event
	ItemID int   // Item the operation targeted, zero for list operations
	Err    error // Set for EventError
}

// EventKind distinguishes state changes from failures.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventError:
		return "error"
	default:
		return ""
	}
}

// Op enumerates the synchronizer operations.
type Op int

const (
	OpLoad Op = iota
	OpFilter
	OpEdit
	OpUpdate
	OpAdd
	OpDelete
	OpDraft
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpFilter:
		return "filter"
	case OpEdit:
		return "edit"
	case OpUpdate:
		return "update"
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	case OpDraft:
		return "draft"
	default:
		return ""
	}
}

// State is an immutable snapshot of the list.
//
// Items is nil until the first successful load. Callers must not modify it.
type State struct {
	Items  []models.Item
	Filter models.Filter
	Draft  string
	Phase  models.Phase
	Err    error // Last reported failure, cleared by the next successful fetch
}

// Loaded reports whether items have been loaded.
func (s State) Loaded() bool { return s.Items != nil }

// Find returns the item with id and whether it is present.
func (s State) Find(id int) (models.Item, bool) {
	if i := indexOf(s.Items, id); i >= 0 {
		return s.Items[i], true
	}
	return models.Item{}, false
}

// Summary returns a one-line description of the state for logs and status bars.
func (s State) Summary() string {
	if !s.Loaded() {
		return fmt.Sprintf("%s (%s)", s.Phase, s.Filter)
	}

	done := 0
	for _, it := range s.Items {
		if it.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d items, %d done (%s)", len(s.Items), done, s.Filter)
}

func stateChanged(op Op, id int) Event {
	return Event{Kind: EventStateChanged, Op: op, ItemID: id}
}

func failed(op Op, id int, err error) Event {
	return Event{Kind: EventError, Op: op, ItemID: id, Err: err}
}

func indexOf(items []models.Item, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
