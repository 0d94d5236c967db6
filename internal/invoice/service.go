package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id int64) error
	ListInvoices(ctx context.Context, filter ListFilter, page Page) (*InvoicePage, error)
	AssignNumber(ctx context.Context, id int64, number string) error
}

// ListFilter narrows invoice listings. Branch and category match by
// shortname, mirroring the public filter contract.
type ListFilter struct {
	Branch        *string
	Category      *string
	PaymentMethod *string
	IsDraft       *bool
	IsPaid        *bool
	StartDate     *time.Time
	EndDate       *time.Time
}

// Page is a pagination request. Zero values mean first page, default size.
type Page struct {
	Number int
	Size   int
}

const defaultPageSize = 30

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}

	if p.Size < 1 {
		p.Size = defaultPageSize
	}

	return p
}

// InvoicePage is one page of results plus the pagination metadata the
// clients depend on.
type InvoicePage struct {
	Results  []*Invoice
	CurrPage int
	LastPage int
	Count    int
}

// SummaryRow is one invoice in the summary listing.
type SummaryRow struct {
	ID           int64
	UniqueNumber string
	Date         time.Time
	TotalValue   decimal.Decimal
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new invoice. Derived gross values are recomputed from the
// authoritative fields, whatever the caller sent.
func (s *Service) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if err := recalculateItems(inv.Items); err != nil {
		return nil, err
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// Update rewrites an invoice and its item list. Item order is preserved as
// given. Gross values are recomputed before the write.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	if err := recalculateItems(inv.Items); err != nil {
		return err
	}

	return s.repo.UpdateInvoice(ctx, inv)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, page Page) (*InvoicePage, error) {
	return s.repo.ListInvoices(ctx, filter, page.Normalize())
}

// Issue assigns the invoice its unique number, turning a draft into an
// issued document. Issuing twice is rejected.
func (s *Service) Issue(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.NumberAssigned() {
		return nil, fmt.Errorf("invoice %d already issued as %s", id, inv.UniqueNumber)
	}

	number := fmt.Sprintf("FV/%d/%02d/%d", inv.ID, inv.Date.Month(), inv.Date.Year())
	if err := s.repo.AssignNumber(ctx, id, number); err != nil {
		return nil, err
	}

	inv.UniqueNumber = number

	return inv, nil
}

// Summary lists per-invoice totals for the filtered range, skipping drafts.
func (s *Service) Summary(ctx context.Context, filter ListFilter) ([]SummaryRow, error) {
	notDraft := false
	filter.IsDraft = &notDraft

	rows := make([]SummaryRow, 0)

	for pageNum := 1; ; pageNum++ {
		page, err := s.repo.ListInvoices(ctx, filter, Page{Number: pageNum, Size: defaultPageSize})
		if err != nil {
			return nil, fmt.Errorf("listing invoices for summary: %w", err)
		}

		for _, inv := range page.Results {
			rows = append(rows, SummaryRow{
				ID:           inv.ID,
				UniqueNumber: inv.UniqueNumber,
				Date:         inv.Date,
				TotalValue:   Total(inv.Items),
			})
		}

		if pageNum >= page.LastPage {
			break
		}
	}

	return rows, nil
}

func recalculateItems(items []LineItem) error {
	for i := range items {
		if err := items[i].Recalculate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}

	return nil
}
