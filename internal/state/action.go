package state

import (
	"github.com/pkruczek/faktura/internal/catalog"
	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/invoice"
)

// Action is one of the closed set of state transitions below. The reducers
// do an exhaustive type switch over these variants; unknown actions leave
// state untouched by construction.
type Action interface {
	isAction()
}

// InvoicePrimaryFulfilled carries the primary invoice fetch result. Scalar
// and item fields become visible immediately; contractor slots stay empty
// until their own fetches settle.
type InvoicePrimaryFulfilled struct {
	Invoice invoice.Invoice
}

// InvoicePrimaryRejected records a failed primary fetch. Detail is the error
// payload surfaced to the user.
type InvoicePrimaryRejected struct {
	Detail string
}

// ContractorFulfilled merges a contractor record under its role slot.
type ContractorFulfilled struct {
	Role       contractor.Role
	Contractor contractor.Contractor
}

// ContractorRejected records a failed contractor fetch. It does not block
// the load from completing; the slot simply stays empty.
type ContractorRejected struct {
	Role   contractor.Role
	Detail string
}

// InvoiceLoadCompleted marks the aggregate load finished: the primary fetch
// and every issued contractor fetch have settled.
type InvoiceLoadCompleted struct{}

// ItemInserted adds a default-valued row right after Index.
type ItemInserted struct {
	Index int
}

// ItemRemoved deletes the row at Index.
type ItemRemoved struct {
	Index int
}

// ItemChanged replaces the row at Index with an edited value. The gross
// value is recomputed only when the net price, VAT rate or quantity changed.
type ItemChanged struct {
	Index int
	Item  invoice.LineItem
}

// CategoryListFulfilled carries one page of sale categories.
type CategoryListFulfilled struct {
	Results  []catalog.Category
	CurrPage int
	LastPage int
	Count    int
}

type CategoryListRejected struct {
	Detail string
}

// SummaryFulfilled carries the invoice summary listing.
type SummaryFulfilled struct {
	Invoices []invoice.SummaryRow
}

type SummaryRejected struct {
	Detail string
}

func (InvoicePrimaryFulfilled) isAction() {}
func (InvoicePrimaryRejected) isAction()  {}
func (ContractorFulfilled) isAction()     {}
func (ContractorRejected) isAction()      {}
func (InvoiceLoadCompleted) isAction()    {}
func (ItemInserted) isAction()            {}
func (ItemRemoved) isAction()             {}
func (ItemChanged) isAction()             {}
func (CategoryListFulfilled) isAction()   {}
func (CategoryListRejected) isAction()    {}
func (SummaryFulfilled) isAction()        {}
func (SummaryRejected) isAction()         {}
