package tui

import "github.com/charmbracelet/bubbles/key"

// browserKeys are the shortcuts of the library browser.
type browserKeys struct {
	quit       key.Binding
	filter     key.Binding
	scope      key.Binding
	toggleOwn  key.Binding
	toggleWant key.Binding
	toggleRead key.Binding
	locate     key.Binding
	remove     key.Binding
	lookup     key.Binding
	manual     key.Binding
	cover      key.Binding
	back       key.Binding
}

var keys = browserKeys{
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	scope: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "scope"),
	),
	toggleOwn: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "own"),
	),
	toggleWant: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "want"),
	),
	toggleRead: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "read"),
	),
	locate: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "location"),
	),
	remove: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	lookup: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "look up"),
	),
	manual: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	cover: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cover"),
	),
	back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}
