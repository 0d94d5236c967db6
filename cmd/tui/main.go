package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkruczek/faktura/cmd/tui/internal/view"
	"github.com/pkruczek/faktura/internal/config"
	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/database"
	"github.com/pkruczek/faktura/internal/invoice"
	invoiceStore "github.com/pkruczek/faktura/internal/invoice/store"
)

type model struct {
	invoiceService *invoice.Service
	contractors    *contractor.Client

	currentView View

	listView    view.ListModel
	formView    view.FormModel
	summaryView view.SummaryModel
}

type View int

const (
	ViewMenu    View = 0
	ViewList    View = 1
	ViewForm    View = 2
	ViewSummary View = 3
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	invoiceSvc := invoice.NewService(invoiceStore.New(db))
	contractorClient := contractor.NewClient(
		cfg.Business.BaseURL,
		cfg.Business.Token,
		contractor.WithTimeout(cfg.Business.Timeout),
		contractor.WithRateLimit(cfg.Business.RateLimit),
		contractor.WithCacheTTL(cfg.Business.CacheTTL),
	)

	return model{
		invoiceService: invoiceSvc,
		contractors:    contractorClient,
		currentView:    ViewMenu,
		listView:       view.NewListModel(invoiceSvc),
		summaryView:    view.NewSummaryModel(invoiceSvc),
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
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.invoiceService)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewForm
				m.formView = view.NewFormModel(m.invoiceService, m.contractors, 0)

				return m, m.formView.Init()
			case "3":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.invoiceService)

				return m, m.summaryView.Init()
			}
		}
	case view.OpenInvoiceMsg:
		m.currentView = ViewForm
		m.formView = view.NewFormModel(m.invoiceService, m.contractors, msg.ID)

		return m, m.formView.Init()
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewForm:
		var newModel tea.Model
		newModel, cmd = m.formView.Update(msg)
		m.formView = newModel.(view.FormModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Faktura TUI\n\n" +
				"1. Browse Invoices\n" +
				"2. New Invoice\n" +
				"3. Summary\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewForm:
		return m.formView.View()
	case ViewSummary:
		return m.summaryView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
