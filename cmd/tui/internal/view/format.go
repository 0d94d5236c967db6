package view

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006"

// FormatMoney renders a monetary value with two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate renders a date in the DD.MM.YYYY form invoices use.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
