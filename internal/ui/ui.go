package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/tasks"
)

// InputMode represents what key presses currently drive.
type InputMode int

const (
	BrowseMode InputMode = iota // keys navigate and act on the list
	DraftMode                   // keys type into the new item input
	RenameMode                  // keys rename the selected item
)

var filters = []models.Filter{models.FilterAll, models.FilterActive, models.FilterCompleted}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	sync     *tasks.Synchronizer
	events   <-chan tasks.Event
	state    tasks.State
	mode     InputMode
	renaming models.Item
	opErr    error // last error returned by a synchronizer call
	list     list.Model
	input    textinput.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int
}

// NewModel creates a new TUI model over sync. events should be the channel passed to the synchronizer; it may be nil.
func NewModel(ctx context.Context, sync *tasks.Synchronizer, events <-chan tasks.Event) *Model {
	l := list.New(nil, taskDelegate{}, 80, 12)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)

	in := textinput.New()
	in.Prompt = "+ "
	in.Placeholder = "What needs to be done?"
	in.CharLimit = 256

	m := &Model{
		ctx:    ctx,
		sync:   sync,
		events: events,
		list:   l,
		input:  in,
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.refresh()
	return m
}

// Init starts the initial load and begins listening for synchronizer events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.initialize(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-10, 3))
		m.input.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case DraftMode:
			return m.handleDraftKeys(msg)
		case RenameMode:
			return m.handleRenameKeys(msg)
		default:
			return m.handleBrowseKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgSyncEvent:
			m.refresh()
			return m, m.waitForEvent()
		case MsgOpDone:
			if res, ok := msg.data.(opResult); ok {
				m.opErr = res.err
			}
			m.refresh()
			return m, nil
		case MsgEventsClosed:
			m.events = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.mode != BrowseMode {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// View renders the filter tabs, the list, the input line and help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case !m.state.Loaded() && m.state.Phase == models.Loading:
		b.WriteString(styles.help.Render("Loading..."))
	case !m.state.Loaded():
		b.WriteString(styles.warn.Render("Items could not be loaded. Press r to retry."))
	case len(m.state.Items) == 0:
		b.WriteString(styles.help.Render(emptyMessage(m.state.Filter)))
	default:
		b.WriteString(m.list.View())
	}
	b.WriteString("\n\n")

	switch m.mode {
	case DraftMode:
		b.WriteString(m.input.View())
	case RenameMode:
		b.WriteString(styles.warn.Render("rename: ") + m.input.View())
	default:
		b.WriteString(styles.help.Render(m.state.Summary()))
	}
	b.WriteString("\n")

	if err := m.lastError(); err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.add):
		m.mode = DraftMode
		m.input.SetValue(m.state.Draft)
		m.input.Placeholder = "What needs to be done?"
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.toggle):
		if it, ok := m.selected(); ok {
			return m, m.edited(m.sync.Toggle(it.ID))
		}
		return m, nil
	case key.Matches(msg, m.keys.rename):
		if it, ok := m.selected(); ok {
			m.mode = RenameMode
			m.renaming = it
			m.input.SetValue(it.Name)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if it, ok := m.selected(); ok {
			return m, m.deleteItem(it.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		return m, m.changeFilter(models.FilterAll)
	case key.Matches(msg, m.keys.active):
		return m, m.changeFilter(models.FilterActive)
	case key.Matches(msg, m.keys.completed):
		return m, m.changeFilter(models.FilterCompleted)
	case key.Matches(msg, m.keys.cycle):
		return m, m.changeFilter(nextFilter(m.state.Filter))
	case key.Matches(msg, m.keys.reload):
		// The initial load is one-shot, so a retry goes through the filter path.
		return m, m.changeFilter(m.state.Filter)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDraftKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.mode = BrowseMode
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.sync.SetDraft(strings.TrimSpace(m.input.Value()))
		m.input.SetValue("")
		m.mode = BrowseMode
		m.input.Blur()
		return m, m.submitDraft()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sync.SetDraft(m.input.Value())
	m.state = m.sync.State()
	return m, cmd
}

func (m *Model) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		// Restore the original name; this is just another coalesced edit.
		err := m.sync.Rename(m.renaming.ID, m.renaming.Name)
		m.finishRename()
		return m, m.edited(err)
	case key.Matches(msg, m.keys.enter):
		m.finishRename()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	var err error
	if name := strings.TrimSpace(m.input.Value()); name != "" {
		err = m.sync.Rename(m.renaming.ID, name)
	}
	return m, tea.Batch(cmd, m.edited(err))
}

func (m *Model) finishRename() {
	m.mode = BrowseMode
	m.renaming = models.Item{}
	m.input.SetValue("")
	m.input.Blur()
	m.refresh()
}

// edited refreshes after a local edit and reports err, if any, as a finished [tasks.OpEdit].
func (m *Model) edited(err error) tea.Cmd {
	m.refresh()
	if err == nil {
		return nil
	}
	return func() tea.Msg {
		return opDoneMsg(tasks.OpEdit, err)
	}
}

// lastError prefers the error of the last synchronizer call over the last store failure.
func (m *Model) lastError() error {
	if m.opErr != nil {
		return m.opErr
	}
	return m.state.Err
}

// refresh copies the synchronizer snapshot into the model and the list, keeping the cursor in range.
func (m *Model) refresh() {
	m.state = m.sync.State()

	idx := m.list.Index()
	m.list.SetItems(toListItems(m.state.Items))
	if n := len(m.state.Items); n > 0 {
		m.list.Select(min(idx, n-1))
	}
}

func (m *Model) selected() (models.Item, bool) {
	if !m.state.Loaded() || len(m.state.Items) == 0 {
		return models.Item{}, false
	}
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return models.Item{}, false
	}
	return it.item, true
}

func (m *Model) initialize() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg(tasks.OpLoad, m.sync.Initialize(m.ctx))
	}
}

func (m *Model) changeFilter(f models.Filter) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg(tasks.OpFilter, m.sync.ChangeFilter(m.ctx, f))
	}
}

func (m *Model) submitDraft() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg(tasks.OpAdd, m.sync.SubmitDraft(m.ctx))
	}
}

func (m *Model) deleteItem(id int) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg(tasks.OpDelete, m.sync.DeleteItem(m.ctx, id))
	}
}

// waitForEvent blocks on the next synchronizer event.
func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg()
		}
		return syncEventMsg(ev)
	}
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(filters))
	for i, f := range filters {
		label := strings.ToUpper(f.String()[:1]) + f.String()[1:]
		if f == m.state.Filter {
			tabs[i] = styles.active.Render(label)
		} else {
			tabs[i] = styles.tab.Render(label)
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) renderHelp() string {
	switch m.mode {
	case DraftMode:
		return m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	case RenameMode:
		return m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	default:
		return m.help.View(m.keys)
	}
}

func emptyMessage(f models.Filter) string {
	if f == models.FilterAll {
		return "Nothing to do. Press a to add an item."
	}
	return fmt.Sprintf("No %s items", f)
}

func nextFilter(f models.Filter) models.Filter {
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return models.FilterAll
}
