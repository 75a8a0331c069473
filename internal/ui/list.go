package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tdx/internal/models"
)

var (
	_ list.Item         = taskItem{}
	_ list.ItemDelegate = taskDelegate{}
)

// taskItem wraps [models.Item] to implement [list.Item].
type taskItem struct {
	item models.Item
}

func (i taskItem) FilterValue() string { return i.item.Name }
func (i taskItem) Title() string       { return i.item.Name }
func (i taskItem) Description() string {
	if i.item.Completed {
		return "completed"
	}
	return "active"
}

// taskDelegate renders one line per item: cursor, checkbox, name.
type taskDelegate struct{}

func (taskDelegate) Height() int                             { return 1 }
func (taskDelegate) Spacing() int                            { return 0 }
func (taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (taskDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(taskItem)
	if !ok {
		return
	}

	box, name := "[ ]", it.item.Name
	if it.item.Completed {
		box, name = "[x]", styles.done.Render(name)
	}

	cursor := "  "
	if index == m.Index() {
		cursor = styles.cursor.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", cursor, box, name)
}

func toListItems(items []models.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = taskItem{item: it}
	}
	return out
}
