package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/pkruczek/faktura/internal/invoice"
	"github.com/pkruczek/faktura/internal/loader"
	"github.com/pkruczek/faktura/internal/state"
)

type formColumn int

const (
	colName formColumn = iota
	colPKWiU
	colPrice
	colQuantity
	colVAT
	colMeasure

	columnCount
)

func (c formColumn) String() string {
	switch c {
	case colName:
		return "Name"
	case colPKWiU:
		return "PKWiU"
	case colPrice:
		return "Net price"
	case colQuantity:
		return "Quantity"
	case colVAT:
		return "VAT"
	case colMeasure:
		return "Measure"
	}

	return "?"
}

var vatCycle = []invoice.VATRate{invoice.VATStandard, invoice.VATReduced, invoice.VATZero}

var measureCycle = []invoice.MeasureUnit{
	invoice.MeasurePiece,
	invoice.MeasureService,
	invoice.MeasurePair,
	invoice.MeasureTonne,
	invoice.MeasureKilometre,
	invoice.MeasureSquareMetre,
	invoice.MeasureCubicMetre,
}

// FormModel is the invoice line-item editor. All edits flow through the
// session store, so each keystroke works off a consistent snapshot and the
// total on screen always matches the rows.
type FormModel struct {
	CommonModel
	invoiceService *invoice.Service
	contractors    loader.ContractorGetter

	store *state.Store
	st    state.State

	invoiceID int64

	cursorRow int
	cursorCol formColumn

	editing bool
	input   textinput.Model

	loading bool
	status  string
}

func NewFormModel(invoiceSvc *invoice.Service, contractors loader.ContractorGetter, invoiceID int64) FormModel {
	ti := textinput.New()
	ti.Width = 30

	return FormModel{
		invoiceService: invoiceSvc,
		contractors:    contractors,
		store:          state.NewStore(),
		invoiceID:      invoiceID,
		input:          ti,
		loading:        invoiceID != 0,
	}
}

func (m FormModel) Init() tea.Cmd {
	if m.invoiceID != 0 {
		return m.loadAggregateCmd()
	}

	// Fresh draft with a single default row.
	now := time.Now()
	m.store.Dispatch(state.InvoicePrimaryFulfilled{Invoice: invoice.Invoice{
		Date:       now,
		DateOfSale: now,
		Items:      []invoice.LineItem{invoice.DefaultLineItem()},
	}})
	m.store.Dispatch(state.InvoiceLoadCompleted{})

	return func() tea.Msg {
		return aggregateLoadedMsg{st: m.store.State()}
	}
}

func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case aggregateLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.st = msg.st

			return m, nil
		}

		m.st = msg.st
		m.clampCursor()

		return m, nil

	case formSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.invoiceID = msg.id
		m.status = "Saved."

		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}

		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m FormModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.st.Invoice.Invoice.Items

	switch msg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "down", "j":
		if m.cursorRow < len(items)-1 {
			m.cursorRow++
		}
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "right", "l":
		if m.cursorCol < columnCount-1 {
			m.cursorCol++
		}
	case "a":
		m.st = m.store.Dispatch(state.ItemInserted{Index: m.cursorRow})
		if len(items) > 0 {
			m.cursorRow++
		}
	case "x":
		m.st = m.store.Dispatch(state.ItemRemoved{Index: m.cursorRow})
		m.clampCursor()
	case "enter":
		if m.cursorRow >= len(items) {
			break
		}

		switch m.cursorCol {
		case colVAT:
			m.cycleVAT()
		case colMeasure:
			m.cycleMeasure()
		default:
			m.startEditing(items[m.cursorRow])
		}
	case "s":
		return m, m.saveCmd()
	}

	return m, nil
}

func (m FormModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()

		return m, nil
	case "enter":
		m.commitEdit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *FormModel) startEditing(item invoice.LineItem) {
	switch m.cursorCol {
	case colName:
		m.input.SetValue(item.Name)
	case colPKWiU:
		m.input.SetValue(item.PKWiU)
	case colPrice:
		m.input.SetValue(FormatMoney(item.NetUnitPrice))
	case colQuantity:
		m.input.SetValue(item.Quantity.String())
	}

	m.input.Focus()
	m.editing = true
	m.status = ""
}

func (m *FormModel) commitEdit() {
	items := m.st.Invoice.Invoice.Items
	if m.cursorRow >= len(items) {
		m.editing = false
		return
	}

	next := items[m.cursorRow]
	value := strings.TrimSpace(m.input.Value())

	switch m.cursorCol {
	case colName:
		next.Name = value
	case colPKWiU:
		next.PKWiU = value
	case colPrice:
		d, err := decimal.NewFromString(value)
		if err != nil {
			m.status = fmt.Sprintf("Invalid price: %q", value)
			return
		}

		next.NetUnitPrice = d
	case colQuantity:
		d, err := decimal.NewFromString(value)
		if err != nil {
			m.status = fmt.Sprintf("Invalid quantity: %q", value)
			return
		}

		next.Quantity = d
	}

	m.editing = false
	m.input.Blur()
	m.dispatchChange(next)
}

func (m *FormModel) cycleVAT() {
	next := m.st.Invoice.Invoice.Items[m.cursorRow]

	for i, rate := range vatCycle {
		if next.VAT == rate {
			next.VAT = vatCycle[(i+1)%len(vatCycle)]
			m.dispatchChange(next)

			return
		}
	}

	next.VAT = vatCycle[0]
	m.dispatchChange(next)
}

func (m *FormModel) cycleMeasure() {
	next := m.st.Invoice.Invoice.Items[m.cursorRow]

	for i, unit := range measureCycle {
		if next.Measure == unit {
			next.Measure = measureCycle[(i+1)%len(measureCycle)]
			m.dispatchChange(next)

			return
		}
	}

	next.Measure = measureCycle[0]
	m.dispatchChange(next)
}

func (m *FormModel) dispatchChange(next invoice.LineItem) {
	before := m.st.Invoice.Invoice.Items
	m.st = m.store.Dispatch(state.ItemChanged{Index: m.cursorRow, Item: next})
	after := m.st.Invoice.Invoice.Items

	// A rejected edit hands back the prior list unchanged.
	if len(before) > 0 && len(after) > 0 && &before[0] == &after[0] {
		m.status = "Edit rejected."
	}
}

func (m *FormModel) clampCursor() {
	if n := len(m.st.Invoice.Invoice.Items); m.cursorRow >= n {
		m.cursorRow = n - 1
	}

	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m FormModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoice...")
	}

	var b strings.Builder

	inv := m.st.Invoice.Invoice

	title := "New invoice"
	if m.invoiceID != 0 {
		title = fmt.Sprintf("Invoice %d", m.invoiceID)
		if inv.NumberAssigned() {
			title += " — " + inv.UniqueNumber
		}
	}

	b.WriteString(title + "\n")
	b.WriteString(fmt.Sprintf("Date: %s   Sale: %s\n", FormatDate(inv.Date), FormatDate(inv.DateOfSale)))

	if inv.Customer != nil {
		b.WriteString("Customer: " + inv.Customer.Name + "\n")
	}

	if inv.Receiver != nil {
		b.WriteString("Receiver: " + inv.Receiver.Name + "\n")
	}

	if m.st.Invoice.Err != "" {
		b.WriteString("Load error: " + m.st.Invoice.Err + "\n")
	}

	b.WriteString("\n")
	m.renderItems(&b)

	b.WriteString(fmt.Sprintf("\nTotal: %s\n", FormatMoney(m.st.Invoice.Total())))

	if m.editing {
		b.WriteString(fmt.Sprintf("\nEdit %s: %s\n(Enter to apply, Esc to cancel)\n",
			m.cursorCol, m.input.View()))
	} else {
		b.WriteString("\narrows: move | Enter: edit/cycle | a: add row | x: remove row | s: save | Esc: back\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

var selectedCell = lipgloss.NewStyle().
	Foreground(lipgloss.Color("229")).
	Background(lipgloss.Color("57"))

func (m FormModel) renderItems(b *strings.Builder) {
	items := m.st.Invoice.Invoice.Items
	if len(items) == 0 {
		b.WriteString("No items. Press 'a' to add a row.\n")
		return
	}

	fmt.Fprintf(b, "    %-24s %-10s %12s %8s %5s %7s %12s\n",
		"Name", "PKWiU", "Net price", "Qty", "VAT", "Measure", "Gross")

	for i, it := range items {
		cells := []string{
			fmt.Sprintf("%-24s", truncate(it.Name, 24)),
			fmt.Sprintf("%-10s", it.PKWiU),
			fmt.Sprintf("%12s", FormatMoney(it.NetUnitPrice)),
			fmt.Sprintf("%8s", it.Quantity.String()),
			fmt.Sprintf("%5s", it.VAT),
			fmt.Sprintf("%7s", it.Measure),
		}

		if i == m.cursorRow {
			cells[m.cursorCol] = selectedCell.Render(cells[m.cursorCol])
			fmt.Fprintf(b, " >  %s %12s\n", strings.Join(cells, " "), FormatMoney(it.GrossValue))

			continue
		}

		fmt.Fprintf(b, "    %s %12s\n", strings.Join(cells, " "), FormatMoney(it.GrossValue))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n-1] + "…"
}

type aggregateLoadedMsg struct {
	st  state.State
	err error
}

func (m FormModel) loadAggregateCmd() tea.Cmd {
	ldr := loader.New(m.invoiceService, m.contractors, m.store)
	id := m.invoiceID

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		st, err := ldr.Load(ctx, id)

		return aggregateLoadedMsg{st: st, err: err}
	}
}

type formSavedMsg struct {
	id  int64
	err error
}

func (m FormModel) saveCmd() tea.Cmd {
	inv := m.st.Invoice.Invoice
	inv.ID = m.invoiceID

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if inv.ID == 0 {
			created, err := m.invoiceService.Create(ctx, &inv)
			if err != nil {
				return formSavedMsg{err: err}
			}

			return formSavedMsg{id: created.ID}
		}

		if err := m.invoiceService.Update(ctx, &inv); err != nil {
			return formSavedMsg{id: inv.ID, err: err}
		}

		return formSavedMsg{id: inv.ID}
	}
}
