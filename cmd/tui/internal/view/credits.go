package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/adjelloud/stockbook/internal/credit"
	"github.com/adjelloud/stockbook/internal/product"
	"github.com/adjelloud/stockbook/internal/store"
)

type creditsState int

const (
	creditsStateBrowse creditsState = iota
	creditsStateAdd
	creditsStatePayment
)

type CreditsModel struct {
	CommonModel
	store *store.Store

	state   creditsState
	table   table.Model
	credits []*credit.Credit
	form    *huh.Form
	status  string

	formProductID string
	formCustomer  string
	formTotal     string
	formPaid      string
	formNotes     string
	formPayment   string
}

func NewCreditsModel(st *store.Store) CreditsModel {
	columns := []table.Column{
		{Title: "Customer", Width: 20},
		{Title: "Product", Width: 24},
		{Title: "Total", Width: 10},
		{Title: "Paid", Width: 10},
		{Title: "Remaining", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := CreditsModel{store: st, table: t}
	m.refreshTable()

	return m
}

func (m CreditsModel) Init() tea.Cmd {
	return nil
}

func (m *CreditsModel) refreshTable() {
	credits, err := m.store.Credits()
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}

	m.credits = credits

	names := m.productNames()

	rows := make([]table.Row, 0, len(credits))
	for _, c := range credits {
		productName := "-"

		if c.ProductID != nil {
			productName = names[*c.ProductID]
			if productName == "" {
				// The reference may dangle after a product delete.
				productName = "(deleted)"
			}
		}

		rows = append(rows, table.Row{
			c.CustomerName,
			productName,
			FormatMoney(c.TotalAmount),
			FormatMoney(c.AmountPaid),
			FormatMoney(c.AmountRemaining),
		})
	}

	m.table.SetRows(rows)
}

func (m CreditsModel) productNames() map[uuid.UUID]string {
	names := make(map[uuid.UUID]string)

	products, err := m.store.Products()
	if err != nil {
		return names
	}

	for _, p := range products {
		names[p.ID] = p.Name
	}

	return names
}

func (m CreditsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.table.SetHeight(wsMsg.Height - 10)
		return m, nil
	}

	switch m.state {
	case creditsStateBrowse:
		return m.updateBrowse(msg)
	case creditsStateAdd, creditsStatePayment:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m CreditsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAddMode()
		case "p":
			if c := m.selected(); c != nil && c.AmountRemaining > 0 {
				return m.enterPaymentMode()
			}
		case "r":
			m.refreshTable()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CreditsModel) selected() *credit.Credit {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.credits) {
		return nil
	}

	return m.credits[idx]
}

func (m CreditsModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formProductID = ""
	m.formCustomer = ""
	m.formTotal = ""
	m.formPaid = ""
	m.formNotes = ""

	productOpts := []huh.Option[string]{huh.NewOption("(no product)", "")}

	if products, err := m.store.Products(); err == nil {
		for _, p := range products {
			if p.Status != product.StatusInStock {
				continue
			}

			productOpts = append(productOpts, huh.NewOption(p.Name, p.ID.String()))
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("product").
				Title("Product").
				Options(productOpts...).
				Value(&m.formProductID),

			huh.NewInput().
				Key("customer").
				Title("Customer name").
				Value(&m.formCustomer).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("customer name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("total").
				Title("Total amount").
				Value(&m.formTotal).
				Validate(validateMoney),

			huh.NewInput().
				Key("paid").
				Title("Amount paid now").
				Value(&m.formPaid).
				Validate(func(s string) error {
					if err := validateMoney(s); err != nil {
						return err
					}
					if parseMoney(s) > parseMoney(m.formTotal) {
						return fmt.Errorf("cannot exceed the total amount")
					}
					return nil
				}),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = creditsStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m CreditsModel) enterPaymentMode() (tea.Model, tea.Cmd) {
	c := m.selected()
	m.formPayment = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title(fmt.Sprintf("Payment amount (%s outstanding)", FormatMoney(c.AmountRemaining))).
				Value(&m.formPayment).
				Validate(func(s string) error {
					if err := validateMoney(s); err != nil {
						return err
					}
					v := parseMoney(s)
					if v <= 0 {
						return fmt.Errorf("payment must be positive")
					}
					if v > c.AmountRemaining {
						return fmt.Errorf("cannot exceed the outstanding amount")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = creditsStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m CreditsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = creditsStateBrowse
			m.form = nil
			m.table.Focus()

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

	switch m.state {
	case creditsStateAdd:
		m.saveCredit()
	case creditsStatePayment:
		m.savePayment()
	}

	m.state = creditsStateBrowse
	m.form = nil
	m.table.Focus()
	m.refreshTable()

	return m, nil
}

func (m *CreditsModel) saveCredit() {
	var productID *uuid.UUID

	if m.formProductID != "" {
		id, err := uuid.Parse(m.formProductID)
		if err == nil {
			productID = &id
		}
	}

	c, err := m.store.AddCredit(credit.CreateParams{
		ProductID:    productID,
		CustomerName: strings.TrimSpace(m.formCustomer),
		TotalAmount:  parseMoney(m.formTotal),
		AmountPaid:   parseMoney(m.formPaid),
		Notes:        m.formNotes,
	})
	if err != nil {
		m.status = fmt.Sprintf("Error adding credit: %v", err)
		return
	}

	m.status = fmt.Sprintf("Credit sale to %s recorded, %s outstanding", c.CustomerName, FormatMoney(c.AmountRemaining))
}

func (m *CreditsModel) savePayment() {
	c := m.selected()
	if c == nil {
		return
	}

	paid, err := m.store.AddPayment(c.ID, parseMoney(m.formPayment))
	if err != nil {
		m.status = fmt.Sprintf("Error recording payment: %v", err)
		return
	}

	if paid.AmountRemaining == 0 {
		m.status = fmt.Sprintf("%s fully paid", paid.CustomerName)
	} else {
		m.status = fmt.Sprintf("%s outstanding for %s", FormatMoney(paid.AmountRemaining), paid.CustomerName)
	}
}

func (m CreditsModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	header := "Credit Sales  |  a: new credit | p: record payment | r: refresh | esc: back"

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.status)
	}

	if m.form != nil {
		title := "New Credit Sale"
		if m.state == creditsStatePayment {
			title = "Record Payment"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(title + "\n\n" + m.form.View())

		return lipgloss.JoinVertical(lipgloss.Left, content, panel)
	}

	return content
}
