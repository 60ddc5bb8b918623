package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/adjelloud/stockbook/internal/store"
	"github.com/adjelloud/stockbook/internal/user"
)

type loginState int

const (
	loginStatePick loginState = iota
	loginStateCreate
)

// LoginModel lets the operator pick an existing profile or create a new one.
// Selecting a profile stamps its last login and makes it the active user.
type LoginModel struct {
	CommonModel
	store *store.Store

	state  loginState
	cursor int
	form   *huh.Form
	status string

	formUsername string
	formFullName string
	formBusiness string
	formLocation string
}

func NewLoginModel(st *store.Store) LoginModel {
	return LoginModel{store: st}
}

func (m LoginModel) Init() tea.Cmd {
	return nil
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case loginStatePick:
		return m.updatePick(msg)
	case loginStateCreate:
		return m.updateCreate(msg)
	}

	return m, nil
}

func (m LoginModel) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	users := m.store.Users()

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(users)-1 {
			m.cursor++
		}
	case "n":
		return m.enterCreateMode()
	case "enter":
		if m.cursor >= 0 && m.cursor < len(users) {
			return m, m.selectUser(users[m.cursor])
		}
	}

	return m, nil
}

func (m LoginModel) selectUser(u *user.User) tea.Cmd {
	now := time.Now()
	m.store.UpdateUser(u.ID, user.UpdateParams{LastLogin: &now})
	m.store.SetActiveUser(u)

	return func() tea.Msg { return UserSelectedMsg{User: u} }
}

func (m LoginModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.formUsername = ""
	m.formFullName = ""
	m.formBusiness = ""
	m.formLocation = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&m.formUsername).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("username cannot be empty")
					}
					return nil
				}),

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

	m.state = loginStateCreate

	return m, m.form.Init()
}

func (m LoginModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = loginStatePick
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

	u, err := m.store.CreateUser(user.CreateParams{
		Username:     strings.TrimSpace(m.formUsername),
		FullName:     strings.TrimSpace(m.formFullName),
		BusinessName: strings.TrimSpace(m.formBusiness),
		Location:     strings.TrimSpace(m.formLocation),
	})
	if err != nil {
		m.status = fmt.Sprintf("Cannot create profile: %v", err)
		m.state = loginStatePick
		m.form = nil

		return m, nil
	}

	m.state = loginStatePick
	m.form = nil

	return m, m.selectUser(u)
}

func (m LoginModel) View() string {
	if m.state == loginStateCreate && m.form != nil {
		return lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render("New Profile\n\n" + m.form.View())
	}

	users := m.store.Users()

	var sb strings.Builder

	sb.WriteString("Who is working today?\n\n")

	if len(users) == 0 {
		sb.WriteString("  No profiles yet.\n")
	}

	for i, u := range users {
		line := u.Username
		if u.FullName != "" {
			line += " (" + u.FullName + ")"
		}

		if u.LastLogin != nil {
			line += "  last login " + FormatDate(*u.LastLogin)
		}

		if i == m.cursor {
			sb.WriteString("> " + line + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}

	sb.WriteString("\nEnter: select | n: new profile | q: quit")

	if m.status != "" {
		sb.WriteString("\n\n" + m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}
