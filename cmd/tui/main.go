package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/adjelloud/stockbook/cmd/tui/internal/view"
	"github.com/adjelloud/stockbook/internal/config"
	creditStore "github.com/adjelloud/stockbook/internal/credit/store"
	"github.com/adjelloud/stockbook/internal/export"
	productStore "github.com/adjelloud/stockbook/internal/product/store"
	"github.com/adjelloud/stockbook/internal/storage"
	"github.com/adjelloud/stockbook/internal/store"
)

type model struct {
	appName   string
	store     *store.Store
	exporter  *export.Service
	exportDir string

	currentView View

	loginView     view.LoginModel
	productsView  view.ProductsModel
	creditsView   view.CreditsModel
	analyticsView view.AnalyticsModel
	settingsView  view.SettingsModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewProducts  View = 2
	ViewCredits   View = 3
	ViewAnalytics View = 4
	ViewSettings  View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	bolt, err := storage.OpenBolt(cfg.Data.Path)
	if err != nil {
		slog.Error("failed to open data file", "path", cfg.Data.Path, "error", err)
		os.Exit(1)
	}

	kv := storage.NewResilient(bolt, slog.Default())

	st := store.New(kv, productStore.New(kv), creditStore.New(kv))
	exporter := export.NewService(st)

	currentView := ViewLogin
	if st.CurrentUser() != nil {
		currentView = ViewMenu
	}

	return model{
		appName:     cfg.App.Name,
		store:       st,
		exporter:    exporter,
		exportDir:   cfg.Export.Dir,
		currentView: currentView,
		loginView:   view.NewLoginModel(st),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			advanced := m.store.State().ShowAdvancedFeatures

			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewProducts
				m.productsView = view.NewProductsModel(m.store)

				return m, m.productsView.Init()
			case "2":
				if !advanced {
					break
				}

				m.currentView = ViewCredits
				m.creditsView = view.NewCreditsModel(m.store)

				return m, m.creditsView.Init()
			case "3":
				if !advanced {
					break
				}

				m.currentView = ViewAnalytics
				m.analyticsView = view.NewAnalyticsModel(m.store)

				return m, m.analyticsView.Init()
			case "4":
				m.currentView = ViewSettings
				m.settingsView = view.NewSettingsModel(m.store, m.exporter, m.exportDir)

				return m, m.settingsView.Init()
			}
		}
	case view.UserSelectedMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.LoggedOutMsg:
		m.currentView = ViewLogin
		m.loginView = view.NewLoginModel(m.store)

		return m, m.loginView.Init()
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewProducts:
		var newModel tea.Model
		newModel, cmd = m.productsView.Update(msg)
		m.productsView = newModel.(view.ProductsModel)
	case ViewCredits:
		var newModel tea.Model
		newModel, cmd = m.creditsView.Update(msg)
		m.creditsView = newModel.(view.CreditsModel)
	case ViewAnalytics:
		var newModel tea.Model
		newModel, cmd = m.analyticsView.Update(msg)
		m.analyticsView = newModel.(view.AnalyticsModel)
	case ViewSettings:
		var newModel tea.Model
		newModel, cmd = m.settingsView.Update(msg)
		m.settingsView = newModel.(view.SettingsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return m.menuView()
	case ViewProducts:
		return m.productsView.View()
	case ViewCredits:
		return m.creditsView.View()
	case ViewAnalytics:
		return m.analyticsView.View()
	case ViewSettings:
		return m.settingsView.View()
	}

	return "Unknown View"
}

func (m model) menuView() string {
	st := m.store.State()

	titleColor := lipgloss.Color("63")
	if st.DarkMode {
		titleColor = lipgloss.Color("229")
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(titleColor).Render(m.appName)

	who := ""
	if st.CurrentUser != nil {
		who = " — " + st.CurrentUser.Username
	}

	menu := title + who + "\n\n1. Products\n"

	if st.ShowAdvancedFeatures {
		menu += "2. Credit Sales\n3. Analytics\n"
	}

	menu += "4. Settings\n\nq. Quit"

	return lipgloss.NewStyle().Padding(2).Render(menu)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
