package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type invoiceViewMode int

const (
	invoiceViewList          invoiceViewMode = iota
	invoiceViewDetail                        // Viewing a single invoice
	invoiceViewConfirmDelete                 // Waiting for y/n
)

// InvoicesModel displays recent invoices in list and detail views
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	cursor    int
	selected  *domain.Invoice
	loading   bool
	err       error
	statusMsg string
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

// invoiceActionMsg reports the outcome of a background action
type invoiceActionMsg struct {
	status string
	err    error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:     a,
		mode:    invoiceViewList,
		loading: true,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	svc := m.app.InvoiceService
	limit := m.app.Config.Invoice.RecentLimit
	return func() tea.Msg {
		invoices, err := svc.ListRecent(context.Background(), limit)
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) current() *domain.Invoice {
	if m.mode != invoiceViewList && m.selected != nil {
		return m.selected
	}
	if len(m.invoices) == 0 {
		return nil
	}
	return m.invoices[m.cursor]
}

func (m *InvoicesModel) deleteInvoice(inv *domain.Invoice) tea.Cmd {
	svc := m.app.InvoiceService
	return func() tea.Msg {
		if err := svc.Delete(context.Background(), inv.ID); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Deleted %s", describe(inv))}
	}
}

func (m *InvoicesModel) duplicateInvoice(inv *domain.Invoice) tea.Cmd {
	svc := m.app.InvoiceService
	return func() tea.Msg {
		copied, err := svc.Duplicate(context.Background(), inv.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Duplicated %s as draft %s", describe(inv), shortID(copied.ID))}
	}
}

func (m *InvoicesModel) writePDF(inv *domain.Invoice) tea.Cmd {
	svc := m.app.InvoiceService
	dir := m.app.Config.Invoice.OutputDir
	return func() tea.Msg {
		data, err := svc.Render(context.Background(), inv.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		path := filepath.Join(dir, inv.InvoiceNumber+".pdf")
		if err := writeFile(path, data); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: "PDF written to " + path}
	}
}

func (m *InvoicesModel) exportLedger() tea.Cmd {
	svc := m.app.InvoiceService
	dir := m.app.Config.Invoice.OutputDir
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("ledger-%s.xlsx", time.Now().Format("20060102")))
		f, err := createFile(path)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		if err := svc.ExportLedger(context.Background(), f); err != nil {
			f.Close()
			return invoiceActionMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: "Ledger written to " + path}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = max(len(m.invoices)-1, 0)
		}
		// Keep the detail view in step with the store
		if m.selected != nil {
			m.selected = m.find(m.selected.ID)
			if m.selected == nil {
				m.mode = invoiceViewList
			}
		}
		return m, nil

	case invoiceActionMsg:
		m.err = msg.err
		m.statusMsg = msg.status
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
	}

	return m, nil
}

func (m *InvoicesModel) find(id string) *domain.Invoice {
	for _, inv := range m.invoices {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Select):
		if inv := m.current(); inv != nil {
			m.selected = inv
			m.mode = invoiceViewDetail
		}
		return m, nil
	}
	return m.updateActions(msg)
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, DefaultKeyMap.Back) {
		m.mode = invoiceViewList
		m.selected = nil
		return m, nil
	}
	return m.updateActions(msg)
}

// updateActions handles the keys shared by the list and detail views
func (m *InvoicesModel) updateActions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inv := m.current()
	if inv == nil {
		return m, nil
	}

	m.err = nil
	m.statusMsg = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Edit):
		return m, func() tea.Msg { return OpenEditorMsg{Invoice: inv} }
	case key.Matches(msg, DefaultKeyMap.Delete):
		m.selected = inv
		m.mode = invoiceViewConfirmDelete
	case key.Matches(msg, DefaultKeyMap.Duplicate):
		return m, m.duplicateInvoice(inv)
	case key.Matches(msg, DefaultKeyMap.PDF):
		if !inv.IsSaved() {
			m.err = domain.ErrNotSaved
			return m, nil
		}
		return m, m.writePDF(inv)
	case key.Matches(msg, DefaultKeyMap.Export):
		return m, m.exportLedger()
	case key.Matches(msg, DefaultKeyMap.Share):
		if !inv.IsSaved() {
			m.err = domain.ErrNotSaved
			return m, nil
		}
		m.statusMsg = strings.ReplaceAll(inv.ShareText(), "\n", "  |  ")
	}
	return m, nil
}

func (m *InvoicesModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inv := m.selected
	m.mode = invoiceViewList
	m.selected = nil

	if msg.String() == "y" && inv != nil {
		return m, m.deleteInvoice(inv)
	}
	m.statusMsg = "Delete cancelled"
	return m, nil
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading..."
	}

	switch m.mode {
	case invoiceViewDetail:
		return m.viewDetail()
	case invoiceViewConfirmDelete:
		return m.viewList() + "\n\n" + lipgloss.NewStyle().Foreground(warningColor).Render(
			fmt.Sprintf("  Delete %s? (y/n)", describe(m.selected)))
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewMessages() string {
	var s string
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Recent Invoices") + "\n\n"
	s += m.viewMessages()

	if len(m.invoices) == 0 && m.err == nil {
		s += subtitleStyle.Render("  No invoices yet. Press 'n' to create one.")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-16s  %-24s  %-11s  %16s",
		"Number", "Customer", "Date", "Total",
	)) + "\n"

	for i, inv := range m.invoices {
		line := fmt.Sprintf("  %s  %-24s  %-11s  %16s",
			padRight(numberBadge(inv), 16),
			truncateStr(inv.Customer.Name, 24),
			inv.CreatedAt.Format("2006-01-02"),
			inv.Currency.Code+" "+inv.Totals.Total.StringFixed(2),
		)

		if i == m.cursor {
			s += selectedStyle.Render(line) + "\n"
		} else {
			s += line + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: view  e: edit  d: delete  u: duplicate  p: pdf  s: share  x: export xlsx")

	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return "No invoice selected"
	}

	var s string
	s += titleStyle.Render(fmt.Sprintf("Invoice %s", numberBadge(inv))) + "\n\n"
	s += m.viewMessages()

	s += fmt.Sprintf("  Preset:    %s\n", inv.PresetKey)
	s += fmt.Sprintf("  Date:      %s\n", inv.CreatedAt.Format("Jan 02, 2006"))
	s += fmt.Sprintf("  Seller:    %s\n", inv.Seller.Name)
	if id := inv.Seller.TaxIDValue(); id != "" {
		s += fmt.Sprintf("  %-10s %s\n", inv.Tax.Label+" ID:", id)
	}
	s += fmt.Sprintf("  Bill To:   %s\n", inv.Customer.Name)
	s += "\n"

	if len(inv.Items) == 0 {
		s += subtitleStyle.Render("  No line items") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-3s  %-30s  %-8s  %6s  %12s  %12s",
			"#", "Description", "HSN/SAC", "Qty", "Rate", "Amount",
		)) + "\n"

		for i, item := range inv.Items {
			s += fmt.Sprintf("  %-3d  %-30s  %-8s  %6s  %12s  %12s\n",
				i+1,
				truncateStr(item.Name, 30),
				truncateStr(item.HSN, 8),
				item.Qty.String(),
				item.Price.StringFixed(2),
				item.Amount().StringFixed(2),
			)
		}
	}

	s += "\n" + viewTotals(inv)
	s += "\n" + helpStyle.Render("  esc: back  e: edit  d: delete  u: duplicate  p: pdf  s: share")

	return s
}

// viewTotals renders the totals block shared by the detail view and editor
func viewTotals(inv *domain.Invoice) string {
	var s string
	s += fmt.Sprintf("  Subtotal:  %14s\n", inv.Totals.Subtotal.StringFixed(2))
	if inv.Totals.TaxAmount != nil {
		s += fmt.Sprintf("  %-10s %14s\n", inv.Tax.Label+":", inv.Totals.TaxAmount.StringFixed(2))
	}
	s += totalStyle.Render(fmt.Sprintf("  Total:     %14s", domain.FormatMoney(inv.Totals.Total, inv.Currency))) + "\n"
	return s
}

func describe(inv *domain.Invoice) string {
	if inv == nil {
		return ""
	}
	if inv.IsSaved() {
		return inv.InvoiceNumber
	}
	return "draft " + shortID(inv.ID)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
