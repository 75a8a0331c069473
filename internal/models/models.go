// package models defines the data model for the tdx task list
package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tdx/internal/shared"
)

// Item represents one task record as exchanged with the remote item store.
//
// ID is assigned by the store on creation and is immutable afterwards. An ID of zero
// means the item has not been confirmed by the store and cannot be updated or deleted.
type Item struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// ItemBody is the request body for create and update calls (the store owns the ID).
type ItemBody struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Body returns the full-record body used for a PUT to the store.
func (i Item) Body() ItemBody {
	return ItemBody{Name: i.Name, Completed: i.Completed}
}

// Addressable reports whether the item carries a store-confirmed ID.
func (i Item) Addressable() bool { return i.ID > 0 }

// With returns a copy of the item with field set to value.
//
// Name expects a string and Completed expects a bool.
func (i Item) With(field Field, value any) (Item, error) {
	switch field {
	case FieldName:
		name, ok := value.(string)
		if !ok {
			return i, fmt.Errorf("%w: %s expects a string, got %T", shared.ErrInvalidArgument, field, value)
		}
		i.Name = name
	case FieldCompleted:
		completed, ok := value.(bool)
		if !ok {
			return i, fmt.Errorf("%w: %s expects a bool, got %T", shared.ErrInvalidArgument, field, value)
		}
		i.Completed = completed
	default:
		return i, fmt.Errorf("%w: unknown field %q", shared.ErrInvalidArgument, string(field))
	}
	return i, nil
}

// Field names an editable attribute of an [Item]. Values match the JSON keys.
type Field string

const (
	FieldName      Field = "name"
	FieldCompleted Field = "completed"
)

// Filter scopes a list request by completion status.
type Filter int

const (
	FilterAll       Filter = iota // no filter
	FilterActive                  // completed=false
	FilterCompleted               // completed=true
)

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Query returns the URL query for the filter, without the leading "?".
func (f Filter) Query() string {
	switch f {
	case FilterActive:
		return "completed=0"
	case FilterCompleted:
		return "completed=1"
	default:
		return ""
	}
}

// Completed returns the completion flag the filter selects and whether it selects one at all.
func (f Filter) Completed() (bool, bool) {
	switch f {
	case FilterActive:
		return false, true
	case FilterCompleted:
		return true, true
	default:
		return false, false
	}
}

// ParseFilter converts "all", "active" or "completed" (case-insensitive) to a [Filter].
//
// The empty string is treated as "all".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "todo", "open":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return FilterAll, fmt.Errorf("%w: unknown filter %q", shared.ErrInvalidArgument, s)
	}
}

// Phase is the load lifecycle of a list.
type Phase int

const (
	Unloaded Phase = iota
	Loading
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// Repository defines storage operations for items.
// Implementations back the reference item store served by `tdx serve`.
type Repository interface {
	List(filter Filter) ([]Item, error)          // List returns items in insertion order, scoped by filter
	Create(body ItemBody) (*Item, error)         // Create inserts an item and returns it with its assigned ID
	Get(id int) (*Item, error)                   // Get retrieves an item by ID
	Update(id int, body ItemBody) (*Item, error) // Update replaces name and completed for an existing item
	Delete(id int) error                         // Delete removes an item by ID
}
