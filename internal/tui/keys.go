package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Navigation
	Invoices   key.Binding
	NewInvoice key.Binding
	Settings   key.Binding

	// Actions
	Select    key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Duplicate key.Binding
	PDF       key.Binding
	Export    key.Binding
	Share     key.Binding
	Save      key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Invoices:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invoices")),
	NewInvoice: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new invoice")),
	Settings:   key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Duplicate:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "duplicate")),
	PDF:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pdf")),
	Export:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export xlsx")),
	Share:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share text")),
	Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
