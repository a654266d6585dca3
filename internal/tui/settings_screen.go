package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldOutputDir = iota
	settingsFieldPreset
	settingsFieldCurrency
	settingsFieldTemplate
	settingsFieldRecentLimit
	settingsFieldSellerName
	settingsFieldSellerAddress
	settingsFieldSellerTaxID
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	"Output Directory:", "Default Preset:", "Default Currency:", "Default Template:",
	"Recent List Size:", "Seller Name:", "Seller Address:", "Seller Tax ID:",
}

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) initForm() {
	cfg := m.app.Config
	values := [settingsFieldCount]string{
		cfg.Invoice.OutputDir,
		cfg.Invoice.DefaultPreset,
		cfg.Invoice.DefaultCurrency,
		cfg.Invoice.DefaultTemplate,
		strconv.Itoa(cfg.Invoice.RecentLimit),
		cfg.Seller.Name,
		cfg.Seller.Address,
		cfg.Seller.TaxID,
	}

	m.fields = make([]textinput.Model, settingsFieldCount)
	for i := range m.fields {
		m.fields[i] = textinput.New()
		m.fields[i].CharLimit = 256
		m.fields[i].Width = 60
		m.fields[i].SetValue(values[i])
	}

	m.fieldFocus = settingsFieldOutputDir
	m.fields[settingsFieldOutputDir].Focus()
}

// saveSettings validates the form against a copy of the config and only
// writes it when the whole form is valid
func (m *SettingsModel) saveSettings() tea.Cmd {
	return func() tea.Msg {
		value := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

		if value(settingsFieldOutputDir) == "" {
			return settingsSavedMsg{err: fmt.Errorf("output directory is required")}
		}

		limit, err := strconv.Atoi(value(settingsFieldRecentLimit))
		if err != nil {
			return settingsSavedMsg{err: fmt.Errorf("recent list size must be a number")}
		}

		cfg := *m.app.Config
		cfg.Invoice.OutputDir = value(settingsFieldOutputDir)
		cfg.Invoice.DefaultPreset = strings.ToUpper(value(settingsFieldPreset))
		cfg.Invoice.DefaultCurrency = strings.ToUpper(value(settingsFieldCurrency))
		cfg.Invoice.DefaultTemplate = strings.ToLower(value(settingsFieldTemplate))
		cfg.Invoice.RecentLimit = limit
		cfg.Seller.Name = value(settingsFieldSellerName)
		cfg.Seller.Address = value(settingsFieldSellerAddress)
		cfg.Seller.TaxID = value(settingsFieldSellerTaxID)

		if err := cfg.Validate(); err != nil {
			return settingsSavedMsg{err: err}
		}

		*m.app.Config = cfg
		if err := m.app.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}

		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		if msg.String() == "enter" {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Settings saved. New defaults apply after restart."
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config
	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	s += subtitleStyle.Render("  Invoice Defaults") + "\n\n"
	s += row("Output Directory:", cfg.Invoice.OutputDir)
	s += row("Default Preset:", cfg.Invoice.DefaultPreset)
	s += row("Default Currency:", cfg.Invoice.DefaultCurrency)
	s += row("Default Template:", cfg.Invoice.DefaultTemplate)
	s += row("Recent List Size:", strconv.Itoa(cfg.Invoice.RecentLimit))

	s += "\n" + subtitleStyle.Render("  Seller Profile") + "\n\n"
	s += row("Name:", cfg.Seller.Name)
	s += row("Address:", cfg.Seller.Address)
	s += row("Tax ID:", cfg.Seller.TaxID)

	s += "\n" + helpStyle.Render("  enter: edit settings")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	for i, label := range settingsLabels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
