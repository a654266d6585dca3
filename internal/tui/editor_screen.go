package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type editorMode int

const (
	editorPickPreset editorMode = iota
	editorForm
)

// editor form field indices
const (
	fieldSellerName = iota
	fieldSellerAddress
	fieldSellerTaxID
	fieldCustomerName
	fieldCustomerAddress
	fieldCustomerTaxID
	fieldItemName
	fieldItemHSN
	fieldItemQty
	fieldItemPrice
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Seller name", "Seller address", "Seller tax ID",
	"Customer name", "Customer address", "Customer tax ID",
	"Item name", "HSN/SAC", "Qty", "Price",
}

// fieldProblemKeys maps form fields to validation keys
var fieldProblemKeys = map[int]string{
	fieldSellerName:      "seller.name",
	fieldSellerAddress:   "seller.address",
	fieldSellerTaxID:     "seller.taxId",
	fieldCustomerName:    "customer.name",
	fieldCustomerAddress: "customer.address",
}

type editorSavedMsg struct {
	invoice *domain.Invoice
	err     error
}

// EditorModel builds a new invoice or edits a stored one. Totals are
// recomputed on every change.
type EditorModel struct {
	app  *app.App
	mode editorMode

	presets      []domain.Preset
	presetCursor int

	draft    *domain.Invoice
	inputs   []textinput.Model
	focus    int
	problems domain.ValidationErrors

	saving    bool
	err       error
	statusMsg string
}

// NewEditorModel creates a new editor screen
func NewEditorModel(a *app.App) tea.Model {
	return &EditorModel{
		app:     a,
		mode:    editorPickPreset,
		presets: domain.ListPresets(),
	}
}

// IsCapturingInput returns true while the form is active
func (m *EditorModel) IsCapturingInput() bool {
	return m.mode == editorForm
}

func (m *EditorModel) Init() tea.Cmd {
	return nil
}

func (m *EditorModel) initForm() tea.Cmd {
	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldLabels[i]
		ti.CharLimit = 120
		ti.Width = 48
		m.inputs[i] = ti
	}

	m.inputs[fieldSellerName].SetValue(m.draft.Seller.Name)
	m.inputs[fieldSellerAddress].SetValue(m.draft.Seller.Address)
	m.inputs[fieldSellerTaxID].SetValue(m.draft.Seller.TaxIDValue())
	m.inputs[fieldCustomerName].SetValue(m.draft.Customer.Name)
	m.inputs[fieldCustomerAddress].SetValue(m.draft.Customer.Address)
	m.inputs[fieldCustomerTaxID].SetValue(m.draft.Customer.TaxIDValue())
	m.inputs[fieldItemQty].SetValue("1")

	m.mode = editorForm
	m.focus = fieldSellerName
	m.problems = nil
	return m.inputs[m.focus].Focus()
}

// syncParties copies the party inputs onto the draft
func (m *EditorModel) syncParties() {
	taxed := m.draft.Tax.IsTaxed()
	party := func(name, address, taxID int) domain.Party {
		p := domain.Party{
			Name:    m.inputs[name].Value(),
			Address: m.inputs[address].Value(),
		}
		if id := m.inputs[taxID].Value(); id != "" || taxed {
			p.TaxID = &id
		}
		return p
	}

	m.draft = m.app.InvoiceService.Edit(m.draft,
		domain.SetSeller(party(fieldSellerName, fieldSellerAddress, fieldSellerTaxID)),
		domain.SetCustomer(party(fieldCustomerName, fieldCustomerAddress, fieldCustomerTaxID)),
	)
}

// addItem turns the item inputs into a line item
func (m *EditorModel) addItem() error {
	qty, err := decimal.NewFromString(strings.TrimSpace(m.inputs[fieldItemQty].Value()))
	if err != nil {
		return fmt.Errorf("quantity must be a number")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(m.inputs[fieldItemPrice].Value()))
	if err != nil {
		return fmt.Errorf("price must be a number")
	}

	item := domain.Item{
		Name:  strings.TrimSpace(m.inputs[fieldItemName].Value()),
		HSN:   strings.TrimSpace(m.inputs[fieldItemHSN].Value()),
		Qty:   qty,
		Price: price,
	}
	m.draft = m.app.InvoiceService.Edit(m.draft, domain.AddItem(item))

	for _, f := range []int{fieldItemName, fieldItemHSN, fieldItemPrice} {
		m.inputs[f].SetValue("")
	}
	m.inputs[fieldItemQty].SetValue("1")
	return nil
}

func (m *EditorModel) removeLastItem() {
	if n := len(m.draft.Items); n > 0 {
		m.draft = m.app.InvoiceService.Edit(m.draft, domain.RemoveItem(m.draft.Items[n-1].ID))
	}
}

func (m *EditorModel) cyclePreset() {
	idx := 0
	for i, p := range m.presets {
		if p.Key == m.draft.PresetKey {
			idx = (i + 1) % len(m.presets)
			break
		}
	}
	m.draft = m.app.InvoiceService.Edit(m.draft, domain.ApplyPreset(m.presets[idx]))
	m.syncParties()
}

func (m *EditorModel) cycleCurrency() {
	currencies := domain.ListCurrencies()
	idx := 0
	for i, c := range currencies {
		if c.Code == m.draft.Currency.Code {
			idx = (i + 1) % len(currencies)
			break
		}
	}
	m.draft = m.app.InvoiceService.Edit(m.draft, domain.SetCurrency(currencies[idx]))
}

func (m *EditorModel) cycleTemplate() {
	order := []domain.TemplateKey{domain.TemplateSimple, domain.TemplateModern, domain.TemplatePremium}
	next := order[0]
	for i, t := range order {
		if t == m.draft.Template {
			next = order[(i+1)%len(order)]
			break
		}
	}
	m.draft = m.app.InvoiceService.Edit(m.draft, domain.SetTemplate(next))
}

func (m *EditorModel) save() tea.Cmd {
	svc := m.app.InvoiceService
	draft := m.draft
	m.saving = true
	return func() tea.Msg {
		saved, err := svc.Save(context.Background(), draft)
		return editorSavedMsg{invoice: saved, err: err}
	}
}

func backToInvoices() tea.Msg {
	return SwitchScreenMsg{Screen: ScreenInvoices}
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenEditorMsg:
		m.err = nil
		m.statusMsg = ""
		m.saving = false
		if msg.Invoice == nil {
			m.mode = editorPickPreset
			m.presetCursor = 0
			m.draft = nil
			return m, nil
		}
		m.draft = msg.Invoice
		return m, m.initForm()

	case editorSavedMsg:
		m.saving = false
		var verr *domain.ValidationError
		switch {
		case errors.As(msg.err, &verr):
			m.problems = verr.Fields
			m.err = nil
			m.statusMsg = ""
		case msg.err != nil:
			m.err = msg.err
		default:
			m.draft = msg.invoice
			m.problems = nil
			m.err = nil
			m.statusMsg = fmt.Sprintf("Saved %s", msg.invoice.InvoiceNumber)
		}
		return m, nil

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		if m.mode == editorPickPreset {
			return m.updatePicker(msg)
		}
		return m.updateForm(msg)
	}

	if m.mode == editorForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *EditorModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		return m, backToInvoices
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.presetCursor < len(m.presets)-1 {
			m.presetCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		draft, err := m.app.InvoiceService.Create(m.presets[m.presetCursor].Key)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.draft = draft
		return m, m.initForm()
	}
	return m, nil
}

func (m *EditorModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	if key.Matches(msg, DefaultKeyMap.Save) {
		m.syncParties()
		m.statusMsg = ""
		return m, m.save()
	}

	switch msg.String() {
	case "esc":
		return m, backToInvoices

	case "tab", "down":
		return m, m.moveFocus(1)

	case "shift+tab", "up":
		return m, m.moveFocus(-1)

	case "enter":
		if m.focus >= fieldItemName {
			if err := m.addItem(); err != nil {
				m.err = err
				return m, nil
			}
			m.inputs[m.focus].Blur()
			m.focus = fieldItemName
			return m, m.inputs[m.focus].Focus()
		}
		return m, m.moveFocus(1)

	case "ctrl+r":
		m.removeLastItem()
		return m, nil

	case "ctrl+p":
		m.cyclePreset()
		return m, nil

	case "ctrl+o":
		m.cycleCurrency()
		return m, nil

	case "ctrl+t":
		m.cycleTemplate()
		return m, nil

	case "ctrl+g":
		m.draft = m.app.InvoiceService.Edit(m.draft, domain.SetQREnabled(!m.draft.QREnabled))
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.focus < fieldItemName {
		m.syncParties()
	}
	return m, cmd
}

func (m *EditorModel) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	return m.inputs[m.focus].Focus()
}

func (m *EditorModel) View() string {
	if m.mode == editorPickPreset {
		return m.viewPicker()
	}
	return m.viewForm()
}

func (m *EditorModel) viewPicker() string {
	var s string
	s += titleStyle.Render("New Invoice - Choose a Tax Preset") + "\n\n"

	for i, p := range m.presets {
		line := fmt.Sprintf("  %-28s %s", p.Label, subtitleStyle.Render(p.Key))
		if i == m.presetCursor {
			s += selectedStyle.Render(fmt.Sprintf("  %-28s %s", p.Label, p.Key)) + "\n"
		} else {
			s += line + "\n"
		}
	}

	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel")
	return s
}

func (m *EditorModel) viewForm() string {
	inv := m.draft
	var s string

	title := "New Invoice"
	if inv.IsSaved() {
		title = "Edit Invoice " + inv.InvoiceNumber
	}
	s += titleStyle.Render(title) + "\n"
	qr := "off"
	if inv.QREnabled {
		qr = "on"
	}
	s += subtitleStyle.Render(fmt.Sprintf("  %s  |  %s  |  template %s  |  QR %s",
		inv.PresetKey, inv.Currency.Code, inv.Template, qr)) + "\n\n"

	for i := 0; i < fieldItemName; i++ {
		s += m.viewField(i)
	}

	s += "\n" + titleStyle.Render("Items") + "\n"
	if msg, ok := m.problems["items"]; ok {
		s += errorStyle.Render("    "+msg) + "\n"
	}
	for i, item := range inv.Items {
		s += fmt.Sprintf("  %-3d %-28s %-8s %6s x %10s = %12s\n",
			i+1,
			truncateStr(item.Name, 28),
			truncateStr(item.HSN, 8),
			item.Qty.String(),
			item.Price.StringFixed(2),
			item.Amount().StringFixed(2),
		)
		for _, field := range []string{"name", "qty", "price"} {
			if msg, ok := m.problems[fmt.Sprintf("items.%d.%s", i, field)]; ok {
				s += errorStyle.Render("      "+msg) + "\n"
			}
		}
	}
	s += "\n"
	for i := fieldItemName; i < fieldCount; i++ {
		s += m.viewField(i)
	}

	s += "\n" + viewTotals(inv)
	if msg, ok := m.problems["totals.total"]; ok {
		s += errorStyle.Render("  "+msg) + "\n"
	}

	switch {
	case m.saving:
		s += "\n  Saving..."
	case m.err != nil:
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	case m.statusMsg != "":
		s += "\n" + statusStyle.Render("  "+m.statusMsg)
	case len(m.problems) > 0:
		s += "\n" + errorStyle.Render("  Fix the highlighted fields and save again")
	}

	s += "\n" + helpStyle.Render("  tab: next field  enter (item): add  ctrl+r: remove last item  ctrl+p: preset  ctrl+o: currency  ctrl+t: template  ctrl+g: QR  ctrl+s: save  esc: back")
	return s
}

func (m *EditorModel) viewField(i int) string {
	indicator := "  "
	labelStyle := subtitleStyle
	if i == m.focus {
		indicator = "> "
		labelStyle = titleStyle
	}

	label := fieldLabels[i]
	if i == fieldSellerTaxID && m.draft.Tax.IsTaxed() {
		label = m.draft.Tax.Label + " ID"
	}

	s := fmt.Sprintf("%s%s %s\n", indicator, labelStyle.Render(padRight(label+":", 18)), m.inputs[i].View())
	if msg, ok := m.problems[fieldProblemKeys[i]]; ok {
		s += errorStyle.Render("    "+msg) + "\n"
	}
	return s
}
