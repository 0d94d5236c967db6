// Package state holds the form session state as immutable values. Every
// transition produces a fresh state; prior values are never mutated in
// place, so a snapshot taken before a dispatch stays valid after it.
package state

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pkruczek/faktura/internal/catalog"
	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/invoice"
)

// Pagination mirrors the list envelope metadata.
type Pagination struct {
	CurrPage int
	LastPage int
	Count    int
}

// InvoiceState is the invoice aggregate: the invoice data plus the load
// outcome. Fetched turns true only once the primary fetch and all issued
// contractor fetches have settled.
type InvoiceState struct {
	Invoice invoice.Invoice
	Fetched bool
	Err     string
}

// Total is the invoice-level sum over the current item list. It is always
// recomputed from the items, never stored.
func (s InvoiceState) Total() decimal.Decimal {
	return invoice.Total(s.Invoice.Items)
}

// CategoryListState holds the fetched sale categories.
type CategoryListState struct {
	Data       []catalog.Category
	Pagination Pagination
	Fetched    bool
	Err        string
}

// SummaryState holds the invoice summary listing.
type SummaryState struct {
	Invoices []invoice.SummaryRow
	Fetched  bool
	Err      string
}

// State is the whole form session tree.
type State struct {
	Invoice    InvoiceState
	Categories CategoryListState
	Summary    SummaryState
}

func Initial() State {
	return State{
		Categories: CategoryListState{
			Pagination: Pagination{CurrPage: 1, LastPage: 1},
		},
	}
}

// Reduce applies one action and returns the next state value.
func (s State) Reduce(a Action) State {
	s.Invoice = s.Invoice.reduce(a)
	s.Categories = s.Categories.reduce(a)
	s.Summary = s.Summary.reduce(a)

	return s
}

func (s InvoiceState) reduce(a Action) InvoiceState {
	switch a := a.(type) {
	case InvoicePrimaryFulfilled:
		s.Invoice = a.Invoice
		s.Invoice.Items = copyItems(a.Invoice.Items)
	case InvoicePrimaryRejected:
		s.Err = a.Detail
	case ContractorFulfilled:
		ct := a.Contractor

		switch a.Role {
		case contractor.RoleCustomer:
			s.Invoice.Customer = &ct
		case contractor.RoleReceiver:
			s.Invoice.Receiver = &ct
		}
	case ContractorRejected:
		// The slot stays empty; completion is not blocked.
	case InvoiceLoadCompleted:
		s.Fetched = true
	case ItemInserted:
		s.Invoice.Items = invoice.InsertItemAfter(s.Invoice.Items, a.Index)
	case ItemRemoved:
		s.Invoice.Items = invoice.RemoveItem(s.Invoice.Items, a.Index)
	case ItemChanged:
		s.Invoice.Items = changeItem(s.Invoice.Items, a.Index, a.Item)
	}

	return s
}

// changeItem swaps in the edited row, recomputing its gross value only when
// one of the three pricing inputs changed. Edits to descriptive fields keep
// the previous gross untouched. A row whose recomputation is invalid
// (negative inputs) is dropped on the floor and the prior list kept.
func changeItem(items []invoice.LineItem, i int, next invoice.LineItem) []invoice.LineItem {
	if i < 0 || i >= len(items) {
		return items
	}

	prev := items[i]

	inputsChanged := !prev.NetUnitPrice.Equal(next.NetUnitPrice) ||
		prev.VAT != next.VAT ||
		!prev.Quantity.Equal(next.Quantity)

	if inputsChanged {
		if err := next.Recalculate(); err != nil {
			return items
		}
	} else {
		next.GrossValue = prev.GrossValue
	}

	out := copyItems(items)
	out[i] = next

	return out
}

func copyItems(items []invoice.LineItem) []invoice.LineItem {
	out := make([]invoice.LineItem, len(items))
	copy(out, items)

	return out
}

func (s CategoryListState) reduce(a Action) CategoryListState {
	switch a := a.(type) {
	case CategoryListFulfilled:
		s.Data = a.Results
		s.Pagination = Pagination{CurrPage: a.CurrPage, LastPage: a.LastPage, Count: a.Count}
		s.Fetched = true
	case CategoryListRejected:
		s.Err = a.Detail
	}

	return s
}

func (s SummaryState) reduce(a Action) SummaryState {
	switch a := a.(type) {
	case SummaryFulfilled:
		s.Invoices = a.Invoices
		s.Fetched = true
	case SummaryRejected:
		s.Err = a.Detail
	}

	return s
}

// Store serializes dispatches onto a single current state value.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{state: Initial()}
}

// Dispatch applies the action and returns the resulting state snapshot.
func (st *Store) Dispatch(a Action) State {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.state = st.state.Reduce(a)

	return st.state
}

// State returns the current snapshot.
func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.state
}
