package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/invoice"
	"github.com/pkruczek/faktura/internal/state"
)

// Dates cross the wire in the legacy DD.MM.YYYY form.
const dateLayout = "02.01.2006"

type itemDTO struct {
	ID          int64           `json:"id,omitempty"`
	Item        *int64          `json:"item,omitempty"`
	Name        string          `json:"name,omitempty"`
	PKWiU       string          `json:"pkwiu"`
	SinglePrice decimal.Decimal `json:"single_price"`
	VAT         string          `json:"vat"`
	Quantity    decimal.Decimal `json:"quantity"`
	Measure     string          `json:"measure"`
	ValueVAT    decimal.Decimal `json:"value_vat"`
}

type contractorDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NIP        string `json:"nip"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

type invoiceResponse struct {
	ID                   int64           `json:"id"`
	UniqueNumber         string          `json:"unique_number"`
	Branch               int64           `json:"branch"`
	Category             int64           `json:"category"`
	Date                 string          `json:"date"`
	DateOfSale           string          `json:"date_of_sale"`
	PaymentMethods       string          `json:"payment_methods"`
	PaymentMaturity      string          `json:"payment_maturnity"`
	AdvancePayment       decimal.Decimal `json:"advance_payment"`
	IsFullyPaidInAdvance bool            `json:"is_fully_paid_in_advance"`
	Note                 string          `json:"note"`
	Who                  int64           `json:"who"`
	CustomerID           *int64          `json:"customerId"`
	ReceiverID           *int64          `json:"receiverId"`
	AuthorizedToReceive  string          `json:"authorized_to_receive"`
	Items                []itemDTO       `json:"items"`
	Customer             *contractorDTO  `json:"customer,omitempty"`
	Receiver             *contractorDTO  `json:"receiver,omitempty"`
	TotalValue           decimal.Decimal `json:"total_value"`
	Fetched              bool            `json:"fetched,omitempty"`
}

type invoiceRequest struct {
	Branch               int64           `json:"branch"`
	Category             int64           `json:"category"`
	Date                 string          `json:"date"`
	DateOfSale           string          `json:"date_of_sale"`
	PaymentMethods       string          `json:"payment_methods"`
	PaymentMaturity      string          `json:"payment_maturnity"`
	AdvancePayment       decimal.Decimal `json:"advance_payment"`
	IsFullyPaidInAdvance bool            `json:"is_fully_paid_in_advance"`
	Note                 string          `json:"note"`
	Who                  int64           `json:"who"`
	CustomerID           *int64          `json:"customerId"`
	ReceiverID           *int64          `json:"receiverId"`
	AuthorizedToReceive  string          `json:"authorized_to_receive"`
	Items                []itemDTO       `json:"items"`
}

func (req invoiceRequest) toDomain() (*invoice.Invoice, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	dateOfSale, err := time.Parse(dateLayout, req.DateOfSale)
	if err != nil {
		return nil, fmt.Errorf("invalid date_of_sale: %w", err)
	}

	items := make([]invoice.LineItem, 0, len(req.Items))

	for i, it := range req.Items {
		vat := invoice.VATRate(it.VAT)
		if !vat.Valid() {
			return nil, fmt.Errorf("item %d: unknown vat rate %q", i, it.VAT)
		}

		items = append(items, invoice.LineItem{
			ID:           it.ID,
			Item:         it.Item,
			Name:         it.Name,
			PKWiU:        it.PKWiU,
			NetUnitPrice: it.SinglePrice,
			VAT:          vat,
			Quantity:     it.Quantity,
			Measure:      invoice.MeasureUnit(it.Measure),
		})
	}

	return &invoice.Invoice{
		Branch:               req.Branch,
		Category:             req.Category,
		Date:                 date,
		DateOfSale:           dateOfSale,
		PaymentMethod:        req.PaymentMethods,
		PaymentMaturity:      req.PaymentMaturity,
		AdvancePayment:       req.AdvancePayment,
		IsFullyPaidInAdvance: req.IsFullyPaidInAdvance,
		Note:                 req.Note,
		Who:                  req.Who,
		CustomerID:           req.CustomerID,
		ReceiverID:           req.ReceiverID,
		AuthorizedToReceive:  req.AuthorizedToReceive,
		Items:                items,
	}, nil
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	items := make([]itemDTO, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, itemDTO{
			ID:          it.ID,
			Item:        it.Item,
			Name:        it.Name,
			PKWiU:       it.PKWiU,
			SinglePrice: it.NetUnitPrice,
			VAT:         string(it.VAT),
			Quantity:    it.Quantity,
			Measure:     string(it.Measure),
			ValueVAT:    it.GrossValue,
		})
	}

	return invoiceResponse{
		ID:                   inv.ID,
		UniqueNumber:         inv.UniqueNumber,
		Branch:               inv.Branch,
		Category:             inv.Category,
		Date:                 inv.Date.Format(dateLayout),
		DateOfSale:           inv.DateOfSale.Format(dateLayout),
		PaymentMethods:       inv.PaymentMethod,
		PaymentMaturity:      inv.PaymentMaturity,
		AdvancePayment:       inv.AdvancePayment,
		IsFullyPaidInAdvance: inv.IsFullyPaidInAdvance,
		Note:                 inv.Note,
		Who:                  inv.Who,
		CustomerID:           inv.CustomerID,
		ReceiverID:           inv.ReceiverID,
		AuthorizedToReceive:  inv.AuthorizedToReceive,
		Items:                items,
		Customer:             toContractorDTO(inv.Customer),
		Receiver:             toContractorDTO(inv.Receiver),
		TotalValue:           invoice.Total(inv.Items),
	}
}

func toAggregateResponse(st state.InvoiceState) invoiceResponse {
	resp := toResponse(&st.Invoice)
	resp.Fetched = st.Fetched

	return resp
}

func toContractorDTO(ct *contractor.Contractor) *contractorDTO {
	if ct == nil {
		return nil
	}

	return &contractorDTO{
		ID:         ct.ID,
		Name:       ct.Name,
		NIP:        ct.NIP,
		Address:    ct.Address,
		PostalCode: ct.PostalCode,
		City:       ct.City,
	}
}

type listItemResponse struct {
	ID             int64           `json:"id"`
	UniqueNumber   string          `json:"unique_number"`
	Date           string          `json:"date"`
	TotalValue     decimal.Decimal `json:"total_value"`
	PaymentMethods string          `json:"payment_methods"`
}

type pageResponse struct {
	Results  []listItemResponse `json:"results"`
	CurrPage int                `json:"curr_page"`
	LastPage int                `json:"last_page"`
	Count    int                `json:"count"`
}

func toPageResponse(page *invoice.InvoicePage) pageResponse {
	results := make([]listItemResponse, 0, len(page.Results))
	for _, inv := range page.Results {
		results = append(results, listItemResponse{
			ID:             inv.ID,
			UniqueNumber:   inv.UniqueNumber,
			Date:           inv.Date.Format(dateLayout),
			TotalValue:     invoice.Total(inv.Items),
			PaymentMethods: inv.PaymentMethod,
		})
	}

	return pageResponse{
		Results:  results,
		CurrPage: page.CurrPage,
		LastPage: page.LastPage,
		Count:    page.Count,
	}
}

type summaryRowResponse struct {
	ID           int64           `json:"id"`
	UniqueNumber string          `json:"unique_number"`
	Date         string          `json:"date"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

type summaryResponse struct {
	Invoices []summaryRowResponse `json:"invoices"`
}

func toSummaryResponse(rows []invoice.SummaryRow) summaryResponse {
	invoices := make([]summaryRowResponse, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, summaryRowResponse{
			ID:           row.ID,
			UniqueNumber: row.UniqueNumber,
			Date:         row.Date.Format(dateLayout),
			TotalValue:   row.TotalValue,
		})
	}

	return summaryResponse{Invoices: invoices}
}
