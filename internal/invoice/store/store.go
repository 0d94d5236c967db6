package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkruczek/faktura/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.unique_number, i.branch, i.category, i.date, i.date_of_sale,
	i.payment_method, i.payment_maturity, i.advance_payment, i.is_fully_paid_in_advance,
	i.note, i.who, i.customer_id, i.receiver_id, i.authorized_to_receive,
	i.created_at, i.updated_at, i.deleted_at
`

// scanInvoice reads an invoice row without its items.
// Expected column order matches selectInvoiceColumns.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var (
		uniqueNumber sql.NullString
		deletedAt    sql.NullTime
	)

	if err := s.Scan(
		&inv.ID, &uniqueNumber, &inv.Branch, &inv.Category, &inv.Date, &inv.DateOfSale,
		&inv.PaymentMethod, &inv.PaymentMaturity, &inv.AdvancePayment, &inv.IsFullyPaidInAdvance,
		&inv.Note, &inv.Who, &inv.CustomerID, &inv.ReceiverID, &inv.AuthorizedToReceive,
		&inv.CreatedAt, &inv.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}

	inv.UniqueNumber = uniqueNumber.String

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO invoices (
			branch, category, date, date_of_sale, payment_method, payment_maturity,
			advance_payment, is_fully_paid_in_advance, note, who,
			customer_id, receiver_id, authorized_to_receive, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		inv.Branch, inv.Category, inv.Date, inv.DateOfSale,
		inv.PaymentMethod, inv.PaymentMaturity,
		inv.AdvancePayment, inv.IsFullyPaidInAdvance, inv.Note, inv.Who,
		inv.CustomerID, inv.ReceiverID, inv.AuthorizedToReceive,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		WHERE i.id = $1 AND i.deleted_at IS NULL`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if inv.Items, err = s.listItems(ctx, inv.ID); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter, page invoice.Page) (*invoice.InvoicePage, error) {
	where := ` FROM invoices i
		JOIN branches b ON i.branch = b.id
		JOIN categories c ON i.category = c.id
		WHERE i.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Branch != nil {
		where += fmt.Sprintf(" AND b.shortname = $%d", argIdx)

		args = append(args, *filter.Branch)
		argIdx++
	}

	if filter.Category != nil {
		where += fmt.Sprintf(" AND c.shortname = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.PaymentMethod != nil {
		where += fmt.Sprintf(" AND i.payment_method = $%d", argIdx)

		args = append(args, *filter.PaymentMethod)
		argIdx++
	}

	if filter.IsDraft != nil {
		if *filter.IsDraft {
			where += " AND i.unique_number IS NULL"
		} else {
			where += " AND i.unique_number IS NOT NULL"
		}
	}

	if filter.IsPaid != nil {
		where += fmt.Sprintf(" AND i.is_fully_paid_in_advance = $%d", argIdx)

		args = append(args, *filter.IsPaid)
		argIdx++
	}

	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND i.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND i.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting invoices: %w", err)
	}

	query := `SELECT ` + selectInvoiceColumns + where +
		fmt.Sprintf(" ORDER BY i.date ASC, i.id ASC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, page.Size, (page.Number-1)*page.Size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	for _, inv := range invoices {
		if inv.Items, err = s.listItems(ctx, inv.ID); err != nil {
			return nil, err
		}
	}

	lastPage := (count + page.Size - 1) / page.Size
	if lastPage < 1 {
		lastPage = 1
	}

	return &invoice.InvoicePage{
		Results:  invoices,
		CurrPage: page.Number,
		LastPage: lastPage,
		Count:    count,
	}, nil
}

// UpdateInvoice rewrites the invoice row and replaces its item list in one
// database transaction so the ordered positions stay consistent.
func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE invoices
		SET branch = $1, category = $2, date = $3, date_of_sale = $4,
			payment_method = $5, payment_maturity = $6, advance_payment = $7,
			is_fully_paid_in_advance = $8, note = $9, who = $10,
			customer_id = $11, receiver_id = $12, authorized_to_receive = $13,
			updated_at = NOW()
		WHERE id = $14 AND deleted_at IS NULL
	`

	res, err := dbTx.ExecContext(ctx, query,
		inv.Branch, inv.Category, inv.Date, inv.DateOfSale,
		inv.PaymentMethod, inv.PaymentMaturity, inv.AdvancePayment,
		inv.IsFullyPaidInAdvance, inv.Note, inv.Who,
		inv.CustomerID, inv.ReceiverID, inv.AuthorizedToReceive,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return invoice.ErrNotFound
	}

	if _, err := dbTx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", inv.ID); err != nil {
		return fmt.Errorf("clearing invoice items: %w", err)
	}

	if err := insertItems(ctx, dbTx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice update: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id int64) error {
	query := `
		UPDATE invoices
		SET deleted_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

func (s *Store) AssignNumber(ctx context.Context, id int64, number string) error {
	query := `
		UPDATE invoices
		SET unique_number = $1, updated_at = NOW()
		WHERE id = $2 AND unique_number IS NULL AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, number, id)
	if err != nil {
		return fmt.Errorf("assigning invoice number: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("invoice %d not found or already numbered", id)
	}

	return nil
}

func (s *Store) listItems(ctx context.Context, invoiceID int64) ([]invoice.LineItem, error) {
	query := `
		SELECT id, item, name, pkwiu, net_unit_price, vat, quantity, measure, gross_value
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	var items []invoice.LineItem

	for rows.Next() {
		var it invoice.LineItem

		var vat, measure string

		if err := rows.Scan(
			&it.ID, &it.Item, &it.Name, &it.PKWiU,
			&it.NetUnitPrice, &vat, &it.Quantity, &measure, &it.GrossValue,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		it.VAT = invoice.VATRate(vat)
		it.Measure = invoice.MeasureUnit(measure)

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

func insertItems(ctx context.Context, dbTx *sql.Tx, invoiceID int64, items []invoice.LineItem) error {
	query := `
		INSERT INTO invoice_items (
			invoice_id, position, item, name, pkwiu,
			net_unit_price, vat, quantity, measure, gross_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	for pos := range items {
		it := &items[pos]

		err := dbTx.QueryRowContext(ctx, query,
			invoiceID, pos, it.Item, it.Name, it.PKWiU,
			it.NetUnitPrice, string(it.VAT), it.Quantity, string(it.Measure), it.GrossValue,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("creating invoice item: %w", err)
		}
	}

	return nil
}
