package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/pkruczek/faktura/internal/invoice"
)

// SummaryModel lists per-invoice totals for issued invoices, with a grand
// total at the bottom. Drafts never show up here.
type SummaryModel struct {
	CommonModel
	invoiceService *invoice.Service

	rows    []invoice.SummaryRow
	loading bool
	err     error
}

func NewSummaryModel(invoiceSvc *invoice.Service) SummaryModel {
	return SummaryModel{
		invoiceService: invoiceSvc,
		loading:        true,
	}
}

func (m SummaryModel) Init() tea.Cmd {
	return m.loadSummaryCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		m.loading = false
		m.rows = msg.rows
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadSummaryCmd()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Error: %v\n\n(r to retry, Esc to back)", m.err))
	}

	var b strings.Builder

	b.WriteString("Issued invoices\n\n")

	if len(m.rows) == 0 {
		b.WriteString("Nothing issued yet.\n")
	}

	grandTotal := decimal.Zero

	for _, row := range m.rows {
		fmt.Fprintf(&b, "%-20s %12s %14s\n", row.UniqueNumber, FormatDate(row.Date), FormatMoney(row.TotalValue))
		grandTotal = grandTotal.Add(row.TotalValue)
	}

	fmt.Fprintf(&b, "\n%-33s %14s\n", "Grand total", FormatMoney(grandTotal))
	b.WriteString("\n(r to refresh, Esc to back)")

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type summaryLoadedMsg struct {
	rows []invoice.SummaryRow
	err  error
}

func (m SummaryModel) loadSummaryCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		rows, err := m.invoiceService.Summary(ctx, invoice.ListFilter{})

		return summaryLoadedMsg{rows: rows, err: err}
	}
}
