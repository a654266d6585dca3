package tui

import "github.com/andy/invoicer/internal/domain"

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// OpenEditorMsg tells the editor to load an invoice. A nil invoice starts
// a new draft from the preset picker.
type OpenEditorMsg struct {
	Invoice *domain.Invoice
}

// storeChangedMsg is delivered after the invoice store commits a change
type storeChangedMsg struct{}
