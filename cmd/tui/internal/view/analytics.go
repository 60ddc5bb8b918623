package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/adjelloud/stockbook/internal/analytics"
	"github.com/adjelloud/stockbook/internal/store"
)

// AnalyticsModel renders the summary report for the active user. The report
// is recomputed every time the view is opened or refreshed.
type AnalyticsModel struct {
	CommonModel
	store *store.Store

	report analytics.Report
	err    error
}

func NewAnalyticsModel(st *store.Store) AnalyticsModel {
	m := AnalyticsModel{store: st}
	m.refresh()

	return m
}

func (m *AnalyticsModel) refresh() {
	m.report, m.err = m.store.Analytics(uuid.Nil)
}

func (m AnalyticsModel) Init() tea.Cmd {
	return nil
}

func (m AnalyticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.refresh()
			return m, nil
		}
	}

	return m, nil
}

func (m AnalyticsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	r := m.report

	sectionStyle := lipgloss.NewStyle().Bold(true).PaddingTop(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		"Analytics  |  r: refresh | esc: back",
		sectionStyle.Render("Inventory"),
		fmt.Sprintf("  Total products: %d", r.Products.Total),
		fmt.Sprintf("  In stock:       %d", r.Products.InStock),
		fmt.Sprintf("  Reserved:       %d", r.Products.Reserved),
		fmt.Sprintf("  Sold:           %d", r.Products.Sold),
		sectionStyle.Render("Financials (sold products)"),
		fmt.Sprintf("  Revenue:        %s", FormatMoney(r.Financial.TotalRevenue)),
		fmt.Sprintf("  Cost:           %s", FormatMoney(r.Financial.TotalCost)),
		fmt.Sprintf("  Profit:         %s", FormatMoney(r.Financial.TotalProfit)),
		fmt.Sprintf("  Margin:         %.1f%%", r.ProfitMargin),
		sectionStyle.Render("Credits"),
		fmt.Sprintf("  Total credited: %s", FormatMoney(r.Credits.TotalCredits)),
		fmt.Sprintf("  Paid:           %s", FormatMoney(r.Credits.TotalPaid)),
		fmt.Sprintf("  Outstanding:    %s", FormatMoney(r.Credits.TotalOutstanding)),
	)

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}
