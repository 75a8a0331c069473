package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	add       key.Binding
	enter     key.Binding
	back      key.Binding
	toggle    key.Binding
	rename    key.Binding
	remove    key.Binding
	cycle     key.Binding
	all       key.Binding
	active    key.Binding
	completed key.Binding
	reload    key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		add:       key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		rename:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		cycle:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		all:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		completed: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.add, k.toggle, k.rename, k.remove, k.cycle, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.add, k.enter, k.back},
		{k.toggle, k.rename, k.remove, k.reload},
		{k.cycle, k.all, k.active, k.completed},
		{k.help, k.quit},
	}
}
