package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adjelloud/stockbook/internal/user"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// UserSelectedMsg is emitted by the login view once a profile is active.
type UserSelectedMsg struct {
	User *user.User
}

// LoggedOutMsg is emitted by the settings view when the active user logs out
// or is deleted.
type LoggedOutMsg struct{}
