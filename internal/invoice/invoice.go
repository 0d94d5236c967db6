package invoice

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkruczek/faktura/internal/contractor"
)

var ErrNotFound = errors.New("invoice not found")

// VATRate is one of the closed set of Polish VAT rates. Wire values keep the
// legacy leading-dot form ('.23') carried by existing invoices.
type VATRate string

const (
	VATZero     VATRate = ".00"
	VATReduced  VATRate = ".08"
	VATStandard VATRate = ".23"
)

// Rate returns the fractional tax rate for the VAT code.
func (v VATRate) Rate() (decimal.Decimal, error) {
	switch v {
	case VATZero:
		return decimal.Zero, nil
	case VATReduced:
		return decimal.New(8, -2), nil
	case VATStandard:
		return decimal.New(23, -2), nil
	}

	return decimal.Decimal{}, errors.New("unknown vat rate: " + string(v))
}

func (v VATRate) Valid() bool {
	_, err := v.Rate()
	return err == nil
}

// MeasureUnit is the unit an item is sold in.
type MeasureUnit string

const (
	MeasurePiece       MeasureUnit = "szt"
	MeasureService     MeasureUnit = "usl"
	MeasurePair        MeasureUnit = "para"
	MeasureTonne       MeasureUnit = "tona"
	MeasureKilometre   MeasureUnit = "km"
	MeasureSquareMetre MeasureUnit = "m2"
	MeasureCubicMetre  MeasureUnit = "m3"
)

// LineItem is one purchasable entry on an invoice. GrossValue is derived from
// NetUnitPrice, VAT and Quantity and is never authoritative on its own.
type LineItem struct {
	ID           int64
	Item         *int64 // catalog entry reference, nil for free-form entries
	Name         string
	PKWiU        string
	NetUnitPrice decimal.Decimal
	VAT          VATRate
	Quantity     decimal.Decimal
	Measure      MeasureUnit
	GrossValue   decimal.Decimal
}

// Invoice is a sale invoice. Customer and Receiver are snapshots of external
// contractor records, populated asynchronously after the primary load.
type Invoice struct {
	ID                   int64
	UniqueNumber         string
	Branch               int64
	Category             int64
	Date                 time.Time
	DateOfSale           time.Time
	PaymentMethod        string
	PaymentMaturity      string
	AdvancePayment       decimal.Decimal
	IsFullyPaidInAdvance bool
	Note                 string
	Who                  int64
	CustomerID           *int64
	ReceiverID           *int64
	AuthorizedToReceive  string
	Items                []LineItem
	Customer             *contractor.Contractor
	Receiver             *contractor.Contractor
	CreatedAt            time.Time
	UpdatedAt            *time.Time
}

// NumberAssigned reports whether the invoice has been issued a unique number.
// Once assigned, branch and category are read-only in the form.
func (inv *Invoice) NumberAssigned() bool {
	return inv.UniqueNumber != ""
}
