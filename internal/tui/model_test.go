package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext mirrors testing.T.Context (Go 1.24+): cancelled when the test finishes
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func loadedInvoices(t *testing.T, svc *fakeInvoiceService) *InvoicesModel {
	t.Helper()
	m := NewInvoicesModel(newTestApp(svc)).(*InvoicesModel)
	m.Update(m.Init()())
	require.False(t, m.loading)
	return m
}

func TestInvoices_ListAndDelete(t *testing.T) {
	svc := newFakeInvoiceService()
	saved, err := svc.Save(testContext(t), validGSTInvoice(t))
	require.NoError(t, err)

	m := loadedInvoices(t, svc)
	require.Len(t, m.invoices, 1)
	assert.Contains(t, m.View(), "2026-GST-0001")

	m.Update(keyRunes("d"))
	assert.Equal(t, invoiceViewConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "Delete 2026-GST-0001?")

	msg := press(m, keyRunes("y"))
	m.Update(msg)
	assert.Equal(t, []string{saved.ID}, svc.deleted)
	assert.Equal(t, "Deleted 2026-GST-0001", m.statusMsg)
}

func TestInvoices_DeleteCancelled(t *testing.T) {
	svc := newFakeInvoiceService()
	_, err := svc.Save(testContext(t), validGSTInvoice(t))
	require.NoError(t, err)

	m := loadedInvoices(t, svc)
	m.Update(keyRunes("d"))
	assert.Nil(t, press(m, keyRunes("n")))
	assert.Equal(t, "Delete cancelled", m.statusMsg)
	assert.Empty(t, svc.deleted)
}

func TestInvoices_UnsavedDraftCannotRenderOrShare(t *testing.T) {
	svc := newFakeInvoiceService()
	draft := validGSTInvoice(t)
	svc.invoices[draft.ID] = draft

	m := loadedInvoices(t, svc)
	assert.Contains(t, m.View(), "DRAFT")

	m.Update(keyRunes("p"))
	assert.ErrorIs(t, m.err, domain.ErrNotSaved)

	m.Update(keyRunes("s"))
	assert.ErrorIs(t, m.err, domain.ErrNotSaved)
}

func TestInvoices_ShareText(t *testing.T) {
	svc := newFakeInvoiceService()
	_, err := svc.Save(testContext(t), validGSTInvoice(t))
	require.NoError(t, err)

	m := loadedInvoices(t, svc)
	m.Update(keyRunes("s"))
	require.NoError(t, m.err)
	assert.Equal(t, "Invoice 2026-GST-0001  |  Amount: 118.00 INR", m.statusMsg)
}

func TestInvoices_EditOpensEditor(t *testing.T) {
	svc := newFakeInvoiceService()
	saved, err := svc.Save(testContext(t), validGSTInvoice(t))
	require.NoError(t, err)

	m := loadedInvoices(t, svc)
	msg := press(m, keyRunes("e"))
	open, ok := msg.(OpenEditorMsg)
	require.True(t, ok)
	assert.Equal(t, saved.ID, open.Invoice.ID)
}

func TestModel_RefreshesOnStoreChange(t *testing.T) {
	svc := newFakeInvoiceService()
	m := New(newTestApp(svc))
	require.Len(t, svc.listeners, 1)

	_, err := svc.Save(testContext(t), validGSTInvoice(t))
	require.NoError(t, err)
	// a second commit before the loop wakes up must not block the store
	_, err = svc.Save(testContext(t), validGSTInvoice(t))
	require.NoError(t, err)

	msg := waitForChange(m.changes)()
	assert.Equal(t, storeChangedMsg{}, msg)

	updated, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	m = updated.(Model)

	m.Close()
	assert.Empty(t, svc.listeners)
}

func TestModel_NewInvoiceKeyOpensPicker(t *testing.T) {
	m := New(newTestApp(newFakeInvoiceService()))
	defer m.Close()

	updated, _ := m.Update(keyRunes("n"))
	m = updated.(Model)
	assert.Equal(t, ScreenEditor, m.currentScreen)
	require.NotNil(t, m.editor)
	assert.Equal(t, editorPickPreset, m.editor.(*EditorModel).mode)

	// the picker does not capture input, so global keys still work
	updated, _ = m.Update(keyRunes("i"))
	assert.Equal(t, ScreenInvoices, updated.(Model).currentScreen)
}

func TestModel_FormSuppressesGlobalKeys(t *testing.T) {
	m := New(newTestApp(newFakeInvoiceService()))
	defer m.Close()

	updated, _ := m.Update(OpenEditorMsg{Invoice: validGSTInvoice(t)})
	m = updated.(Model)
	require.Equal(t, ScreenEditor, m.currentScreen)

	updated, _ = m.Update(keyRunes("q"))
	m = updated.(Model)
	assert.Equal(t, ScreenEditor, m.currentScreen)
	assert.Equal(t, "Acme Tradersq", m.editor.(*EditorModel).draft.Seller.Name)
}

func TestSettings_RejectsInvalidValues(t *testing.T) {
	a := newTestApp(newFakeInvoiceService())
	m := NewSettingsModel(a).(*SettingsModel)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.IsCapturingInput())

	m.fields[settingsFieldPreset].SetValue("MARS_TAX")
	msg := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m.Update(msg)

	assert.Error(t, m.err)
	assert.True(t, m.IsCapturingInput())
	assert.Equal(t, domain.PresetIndiaGST, a.Config.Invoice.DefaultPreset)

	m.fields[settingsFieldPreset].SetValue("UK_VAT")
	m.fields[settingsFieldRecentLimit].SetValue("many")
	m.Update(press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))
	assert.EqualError(t, m.err, "recent list size must be a number")
}

func TestSettings_SavesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	a := newTestApp(newFakeInvoiceService())
	m := NewSettingsModel(a).(*SettingsModel)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.fields[settingsFieldPreset].SetValue("uk_vat")
	m.fields[settingsFieldCurrency].SetValue("gbp")
	m.fields[settingsFieldSellerName].SetValue("  Acme Ltd ")
	m.Update(press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))

	require.NoError(t, m.err)
	assert.False(t, m.IsCapturingInput())
	assert.Equal(t, "UK_VAT", a.Config.Invoice.DefaultPreset)
	assert.Equal(t, "GBP", a.Config.Invoice.DefaultCurrency)
	assert.Equal(t, "Acme Ltd", a.Config.Seller.Name)

	path := filepath.Join(home, ".config", "invoicer", "config.yaml")
	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UK_VAT", loaded.Invoice.DefaultPreset)
	assert.Contains(t, m.View(), "apply after restart")
}
