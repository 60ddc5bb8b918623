package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/adjelloud/stockbook/internal/product"
	"github.com/adjelloud/stockbook/internal/store"
)

type productsState int

const (
	productsStateBrowse productsState = iota
	productsStateForm
)

type ProductsModel struct {
	CommonModel
	store *store.Store

	state    productsState
	table    table.Model
	products []*product.Product
	form     *huh.Form
	editing  *product.Product
	status   string

	formName      string
	formCategory  string
	formCostCad   string
	formCostDzd   string
	formTransport string
	formSalePrice string
	formPackage   string
	formQuantity  string
	formStatus    string
	formNotes     string
}

func NewProductsModel(st *store.Store) ProductsModel {
	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Category", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Sale", Width: 10},
		{Title: "Qty", Width: 5},
		{Title: "Sold on", Width: 12},
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

	m := ProductsModel{store: st, table: t}
	m.refreshTable()

	return m
}

func (m ProductsModel) Init() tea.Cmd {
	return nil
}

func (m *ProductsModel) refreshTable() {
	products, err := m.store.Products()
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}

	m.products = products

	rows := make([]table.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, table.Row{
			p.Name,
			string(p.Category),
			string(p.Status),
			FormatMoney(p.SalePrice),
			strconv.Itoa(p.Quantity),
			FormatDatePtr(p.SaleDate),
		})
	}

	m.table.SetRows(rows)
}

func (m ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.table.SetHeight(wsMsg.Height - 10)
		return m, nil
	}

	switch m.state {
	case productsStateBrowse:
		return m.updateBrowse(msg)
	case productsStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m ProductsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterFormMode(nil)
		case "e":
			if p := m.selected(); p != nil {
				return m.enterFormMode(p)
			}
		case "d":
			if p := m.selected(); p != nil {
				if err := m.store.DeleteProduct(p.ID); err != nil {
					m.status = fmt.Sprintf("Error deleting: %v", err)
				} else {
					m.status = fmt.Sprintf("Deleted %s", p.Name)
				}

				m.refreshTable()
			}

			return m, nil
		case "r":
			m.refreshTable()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProductsModel) selected() *product.Product {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return nil
	}

	return m.products[idx]
}

func (m ProductsModel) enterFormMode(p *product.Product) (tea.Model, tea.Cmd) {
	m.editing = p

	if p != nil {
		m.formName = p.Name
		m.formCategory = string(p.Category)
		m.formCostCad = FormatMoney(p.CostPriceCad)
		m.formCostDzd = FormatMoney(p.CostPriceDzd)
		m.formTransport = FormatMoney(p.TransportPrice)
		m.formSalePrice = FormatMoney(p.SalePrice)
		m.formPackage = p.PackageSize
		m.formQuantity = strconv.Itoa(p.Quantity)
		m.formStatus = string(p.Status)
		m.formNotes = p.Notes
	} else {
		m.formName = ""
		m.formCategory = string(product.CategoryOther)
		m.formCostCad = ""
		m.formCostDzd = ""
		m.formTransport = ""
		m.formSalePrice = ""
		m.formPackage = ""
		m.formQuantity = "1"
		m.formStatus = string(product.StatusInStock)
		m.formNotes = ""
	}

	categoryOpts := make([]huh.Option[string], 0, len(product.Categories()))
	for _, c := range product.Categories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), string(c)))
	}

	statusOpts := make([]huh.Option[string], 0, len(product.Statuses()))
	for _, st := range product.Statuses() {
		statusOpts = append(statusOpts, huh.NewOption(string(st), string(st)))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOpts...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("cost_cad").
				Title("Cost price (CAD)").
				Value(&m.formCostCad).
				Validate(validateMoney),

			huh.NewInput().
				Key("cost_dzd").
				Title("Cost price (DZD)").
				Value(&m.formCostDzd).
				Validate(validateMoney),

			huh.NewInput().
				Key("transport").
				Title("Transport price").
				Value(&m.formTransport).
				Validate(validateMoney),

			huh.NewInput().
				Key("sale_price").
				Title("Sale price").
				Value(&m.formSalePrice).
				Validate(validateMoney),

			huh.NewInput().
				Key("package").
				Title("Package size").
				Value(&m.formPackage),

			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&m.formQuantity).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("quantity must be a non-negative integer")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("status").
				Title("Status").
				Options(statusOpts...).
				Value(&m.formStatus),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = productsStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProductsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = productsStateBrowse
			m.form = nil
			m.editing = nil
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

	m.save()
	m.state = productsStateBrowse
	m.form = nil
	m.editing = nil
	m.table.Focus()
	m.refreshTable()

	return m, nil
}

func (m *ProductsModel) save() {
	name := strings.TrimSpace(m.formName)
	category := product.Category(m.formCategory)
	costCad := parseMoney(m.formCostCad)
	costDzd := parseMoney(m.formCostDzd)
	transport := parseMoney(m.formTransport)
	salePrice := parseMoney(m.formSalePrice)
	quantity := parseQuantity(m.formQuantity)
	status := product.Status(m.formStatus)
	notes := m.formNotes

	if m.editing == nil {
		_, err := m.store.AddProduct(product.CreateParams{
			Name:           name,
			Category:       category,
			CostPriceCad:   costCad,
			CostPriceDzd:   costDzd,
			TransportPrice: transport,
			SalePrice:      salePrice,
			PackageSize:    m.formPackage,
			Quantity:       &quantity,
			Status:         status,
			Notes:          notes,
		})
		if err != nil {
			m.status = fmt.Sprintf("Error adding: %v", err)
			return
		}

		m.status = fmt.Sprintf("Added %s", name)

		return
	}

	_, err := m.store.UpdateProduct(m.editing.ID, product.UpdateParams{
		Name:           &name,
		Category:       &category,
		CostPriceCad:   &costCad,
		CostPriceDzd:   &costDzd,
		TransportPrice: &transport,
		SalePrice:      &salePrice,
		PackageSize:    &m.formPackage,
		Quantity:       &quantity,
		Status:         &status,
		Notes:          &notes,
	})
	if err != nil {
		m.status = fmt.Sprintf("Error saving: %v", err)
		return
	}

	m.status = fmt.Sprintf("Saved %s", name)
}

func (m ProductsModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	header := "Products  |  a: add | e: edit | d: delete | r: refresh | esc: back"

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.status)
	}

	if m.state == productsStateForm && m.form != nil {
		title := "Add Product"
		if m.editing != nil {
			title = "Edit Product"
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

func validateMoney(s string) error {
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("must be a non-negative number")
	}

	return nil
}

func parseMoney(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return v
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}

	return n
}
