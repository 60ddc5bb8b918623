package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/adjelloud/stockbook/internal/export"
	"github.com/adjelloud/stockbook/internal/store"
	"github.com/adjelloud/stockbook/internal/user"
)

type settingsState int

const (
	settingsStateMenu settingsState = iota
	settingsStateProfile
	settingsStateConfirmDelete
)

// SettingsModel covers profile editing, preference toggles, data export and
// profile deletion for the active user.
type SettingsModel struct {
	CommonModel
	store     *store.Store
	exporter  *export.Service
	exportDir string

	state  settingsState
	form   *huh.Form
	status string

	formFullName string
	formBusiness string
	formLocation string
	confirmed    bool
}

func NewSettingsModel(st *store.Store, exporter *export.Service, exportDir string) SettingsModel {
	return SettingsModel{store: st, exporter: exporter, exportDir: exportDir}
}

func (m SettingsModel) Init() tea.Cmd {
	return nil
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case settingsStateMenu:
		return m.updateMenu(msg)
	case settingsStateProfile, settingsStateConfirmDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m SettingsModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "p":
		return m.enterProfileMode()
	case "t":
		if m.store.ToggleDarkMode() {
			m.status = "Dark mode on"
		} else {
			m.status = "Dark mode off"
		}
	case "f":
		if m.store.ToggleAdvancedFeatures() {
			m.status = "Analytics & credits enabled"
		} else {
			m.status = "Analytics & credits hidden"
		}
	case "x":
		m.export()
	case "D":
		return m.enterConfirmDeleteMode()
	case "l":
		m.store.SetActiveUser(nil)
		return m, func() tea.Msg { return LoggedOutMsg{} }
	}

	return m, nil
}

func (m *SettingsModel) export() {
	cu := m.store.CurrentUser()
	if cu == nil {
		return
	}

	bundle, err := m.exporter.Build(cu.ID)
	if err != nil {
		m.status = fmt.Sprintf("Export failed: %v", err)
		return
	}

	path, err := m.exporter.WriteFile(bundle, m.exportDir)
	if err != nil {
		m.status = fmt.Sprintf("Export failed: %v", err)
		return
	}

	m.status = "Exported to " + path
}

func (m SettingsModel) enterProfileMode() (tea.Model, tea.Cmd) {
	cu := m.store.CurrentUser()
	if cu == nil {
		return m, Back
	}

	m.formFullName = cu.FullName
	m.formBusiness = cu.BusinessName
	m.formLocation = cu.Location

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("full_name").
				Title("Full name").
				Value(&m.formFullName),

			huh.NewInput().
				Key("business").
				Title("Business name").
				Value(&m.formBusiness),

			huh.NewInput().
				Key("location").
				Title("Location").
				Value(&m.formLocation),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = settingsStateProfile

	return m, m.form.Init()
}

func (m SettingsModel) enterConfirmDeleteMode() (tea.Model, tea.Cmd) {
	cu := m.store.CurrentUser()
	if cu == nil {
		return m, Back
	}

	m.confirmed = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete profile %q and all of its data?", cu.Username)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.confirmed),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = settingsStateConfirmDelete

	return m, m.form.Init()
}

func (m SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = settingsStateMenu
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	state := m.state
	m.state = settingsStateMenu
	m.form = nil

	switch state {
	case settingsStateProfile:
		m.saveProfile()
	case settingsStateConfirmDelete:
		if m.confirmed {
			return m, m.deleteUser()
		}
	}

	return m, nil
}

func (m *SettingsModel) saveProfile() {
	cu := m.store.CurrentUser()
	if cu == nil {
		return
	}

	fullName := strings.TrimSpace(m.formFullName)
	business := strings.TrimSpace(m.formBusiness)
	location := strings.TrimSpace(m.formLocation)

	m.store.UpdateUser(cu.ID, user.UpdateParams{
		FullName:     &fullName,
		BusinessName: &business,
		Location:     &location,
	})

	m.status = "Profile saved"
}

func (m SettingsModel) deleteUser() tea.Cmd {
	cu := m.store.CurrentUser()
	if cu == nil {
		return nil
	}

	if err := m.store.DeleteUser(cu.ID); err != nil {
		m.status = fmt.Sprintf("Delete failed: %v", err)
		return nil
	}

	return func() tea.Msg { return LoggedOutMsg{} }
}

func (m SettingsModel) View() string {
	if m.form != nil {
		title := "Edit Profile"
		if m.state == settingsStateConfirmDelete {
			title = "Delete Profile"
		}

		return lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(title + "\n\n" + m.form.View())
	}

	cu := m.store.CurrentUser()
	if cu == nil {
		return lipgloss.NewStyle().Padding(2).Render("No active user.\n\n(Esc to back)")
	}

	st := m.store.State()

	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}

	content := fmt.Sprintf(
		"Settings — %s\n\n"+
			"p. Edit profile\n"+
			"t. Dark mode (%s)\n"+
			"f. Analytics & credits (%s)\n"+
			"x. Export my data\n"+
			"l. Log out\n"+
			"D. Delete this profile\n\n"+
			"esc. Back",
		cu.Username,
		onOff(st.DarkMode),
		onOff(st.ShowAdvancedFeatures),
	)

	if m.status != "" {
		content += "\n\n" + m.status
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}
