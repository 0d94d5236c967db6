package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkruczek/faktura/internal/invoice"
)

type draftFilter int

const (
	draftFilterAll draftFilter = iota
	draftFilterDrafts
	draftFilterIssued
)

func (f draftFilter) String() string {
	switch f {
	case draftFilterDrafts:
		return "drafts"
	case draftFilterIssued:
		return "issued"
	}

	return "all"
}

type ListModel struct {
	CommonModel
	invoiceService *invoice.Service

	table table.Model
	page  *invoice.InvoicePage

	pageNum     int
	draftFilter draftFilter

	loading bool
	err     error
}

func NewListModel(invoiceSvc *invoice.Service) ListModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Number", Width: 18},
		{Title: "Date", Width: 12},
		{Title: "Payment", Width: 12},
		{Title: "Total", Width: 12},
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

	return ListModel{
		invoiceService: invoiceSvc,
		table:          t,
		pageNum:        1,
		loading:        true,
	}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadPageCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPageMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.page = msg.page
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			if inv := m.selected(); inv != nil {
				return m, OpenInvoice(inv.ID)
			}
		case "n":
			if m.page != nil && m.pageNum < m.page.LastPage {
				m.pageNum++
				m.loading = true

				return m, m.loadPageCmd()
			}
		case "p":
			if m.pageNum > 1 {
				m.pageNum--
				m.loading = true

				return m, m.loadPageCmd()
			}
		case "f":
			m.draftFilter = (m.draftFilter + 1) % 3
			m.pageNum = 1
			m.loading = true

			return m, m.loadPageCmd()
		case "r":
			m.loading = true
			return m, m.loadPageCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Error: %v\n\n(r to retry, Esc to back)", m.err))
	}

	header := fmt.Sprintf("Invoices — page %d/%d (%d total, showing %s)",
		m.page.CurrPage, m.page.LastPage, m.page.Count, m.draftFilter)
	help := "Enter: open | n/p: page | f: filter drafts | r: refresh | Esc: back"

	return lipgloss.NewStyle().Padding(1).Render(
		header + "\n\n" + m.table.View() + "\n\n" + help)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.page.Results))
	for _, inv := range m.page.Results {
		number := inv.UniqueNumber
		if !inv.NumberAssigned() {
			number = "(draft)"
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", inv.ID),
			number,
			FormatDate(inv.Date),
			inv.PaymentMethod,
			FormatMoney(invoice.Total(inv.Items)),
		})
	}

	m.table.SetRows(rows)
}

func (m ListModel) selected() *invoice.Invoice {
	if m.page == nil {
		return nil
	}

	i := m.table.Cursor()
	if i < 0 || i >= len(m.page.Results) {
		return nil
	}

	return m.page.Results[i]
}

type loadPageMsg struct {
	page *invoice.InvoicePage
	err  error
}

func (m ListModel) loadPageCmd() tea.Cmd {
	pageNum := m.pageNum
	filter := invoice.ListFilter{}

	switch m.draftFilter {
	case draftFilterDrafts:
		isDraft := true
		filter.IsDraft = &isDraft
	case draftFilterIssued:
		isDraft := false
		filter.IsDraft = &isDraft
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		page, err := m.invoiceService.List(ctx, filter, invoice.Page{Number: pageNum})

		return loadPageMsg{page: page, err: err}
	}
}
