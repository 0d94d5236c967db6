package invoice

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a price or quantity is negative.
// Negative monetary inputs are not a supported case and are rejected rather
// than clamped.
var ErrNegativeAmount = errors.New("negative price or quantity")

var one = decimal.New(1, 0)

// round2 rounds half away from zero to two decimals.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// GrossValue derives the tax-inclusive value of a line: the unit gross price
// is rounded to two decimals first, then multiplied by the quantity and
// rounded again. The double rounding matches how every existing invoice was
// computed, so the order must not change.
func GrossValue(netUnitPrice decimal.Decimal, vat VATRate, quantity decimal.Decimal) (decimal.Decimal, error) {
	if netUnitPrice.IsNegative() || quantity.IsNegative() {
		return decimal.Decimal{}, ErrNegativeAmount
	}

	rate, err := vat.Rate()
	if err != nil {
		return decimal.Decimal{}, err
	}

	unitGross := round2(netUnitPrice.Mul(one.Add(rate)))

	return round2(unitGross.Mul(quantity)), nil
}

// Recalculate refreshes the item's derived gross value. Only the receiver is
// mutated, never sibling items.
func (it *LineItem) Recalculate() error {
	gross, err := GrossValue(it.NetUnitPrice, it.VAT, it.Quantity)
	if err != nil {
		return err
	}

	it.GrossValue = gross

	return nil
}

// Total sums the gross values of the current item list. It is a computed
// view: an empty list totals 0.00 and zero-quantity rows contribute nothing
// while staying in the list.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.GrossValue)
	}

	return round2(sum)
}

// DefaultLineItem returns the row the form seeds new positions with.
func DefaultLineItem() LineItem {
	return LineItem{
		VAT:      VATStandard,
		Quantity: decimal.New(1, 0),
		Measure:  MeasurePiece,
	}
}

// InsertItemAfter returns a new item list with a default row inserted right
// after index i. The input slice is left untouched. An out-of-range index
// appends at the end.
func InsertItemAfter(items []LineItem, i int) []LineItem {
	pos := i + 1
	if pos < 0 || pos > len(items) {
		pos = len(items)
	}

	out := make([]LineItem, 0, len(items)+1)
	out = append(out, items[:pos]...)
	out = append(out, DefaultLineItem())
	out = append(out, items[pos:]...)

	return out
}

// RemoveItem returns a new item list with the row at index i removed. The
// last remaining row may be removed; no minimum is enforced here.
func RemoveItem(items []LineItem, i int) []LineItem {
	if i < 0 || i >= len(items) {
		out := make([]LineItem, len(items))
		copy(out, items)

		return out
	}

	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	out = append(out, items[i+1:]...)

	return out
}
