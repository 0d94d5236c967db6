package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkruczek/faktura/internal/invoice"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)

	return d
}

func TestGrossValue(t *testing.T) {
	type testCase struct {
		name     string
		price    string
		vat      invoice.VATRate
		quantity string
		want     string
	}

	tests := []testCase{
		{
			name:     "StandardRateSingleUnit",
			price:    "10.00",
			vat:      invoice.VATStandard,
			quantity: "1",
			want:     "12.30",
		},
		{
			name:  "UnitGrossRoundedBeforeQuantity",
			price: "10.005",
			vat:   invoice.VATStandard,
			// 10.005 * 1.23 = 12.30615 -> 12.31 per unit, then *3 = 36.93.
			// Rounding after multiplying would give 36.92 instead.
			quantity: "3",
			want:     "36.93",
		},
		{
			name:     "ZeroRate",
			price:    "99.99",
			vat:      invoice.VATZero,
			quantity: "2",
			want:     "199.98",
		},
		{
			name:     "ReducedRate",
			price:    "7.41",
			vat:      invoice.VATReduced,
			quantity: "1",
			want:     "8.00",
		},
		{
			name:     "ZeroQuantity",
			price:    "10.00",
			vat:      invoice.VATStandard,
			quantity: "0",
			want:     "0",
		},
		{
			name:     "FractionalQuantity",
			price:    "3.30",
			vat:      invoice.VATStandard,
			quantity: "0.5",
			want:     "2.03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := invoice.GrossValue(dec(t, tt.price), tt.vat, dec(t, tt.quantity))
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(t, tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestGrossValue_Invalid(t *testing.T) {
	_, err := invoice.GrossValue(dec(t, "-1.00"), invoice.VATStandard, dec(t, "1"))
	assert.ErrorIs(t, err, invoice.ErrNegativeAmount)

	_, err = invoice.GrossValue(dec(t, "1.00"), invoice.VATStandard, dec(t, "-1"))
	assert.ErrorIs(t, err, invoice.ErrNegativeAmount)

	_, err = invoice.GrossValue(dec(t, "1.00"), invoice.VATRate(".50"), dec(t, "1"))
	assert.Error(t, err)
}

func TestGrossValue_Monotonic(t *testing.T) {
	prices := []string{"0", "0.01", "1.00", "9.99", "10.00", "123.45"}
	rates := []invoice.VATRate{invoice.VATZero, invoice.VATReduced, invoice.VATStandard}
	quantities := []string{"0", "0.5", "1", "2", "10"}

	gross := func(p string, v invoice.VATRate, q string) decimal.Decimal {
		got, err := invoice.GrossValue(dec(t, p), v, dec(t, q))
		require.NoError(t, err)

		return got
	}

	for _, q := range quantities {
		for _, v := range rates {
			for i := 1; i < len(prices); i++ {
				lo, hi := gross(prices[i-1], v, q), gross(prices[i], v, q)
				assert.True(t, lo.LessThanOrEqual(hi),
					"price %s->%s vat %s qty %s: %s > %s", prices[i-1], prices[i], v, q, lo, hi)
			}
		}
	}

	for _, p := range prices {
		for _, q := range quantities {
			for i := 1; i < len(rates); i++ {
				lo, hi := gross(p, rates[i-1], q), gross(p, rates[i], q)
				assert.True(t, lo.LessThanOrEqual(hi),
					"vat %s->%s price %s qty %s: %s > %s", rates[i-1], rates[i], p, q, lo, hi)
			}
		}

		for _, v := range rates {
			for i := 1; i < len(quantities); i++ {
				lo, hi := gross(p, v, quantities[i-1]), gross(p, v, quantities[i])
				assert.True(t, lo.LessThanOrEqual(hi),
					"qty %s->%s price %s vat %s: %s > %s", quantities[i-1], quantities[i], p, v, lo, hi)
			}
		}
	}
}

func TestTotal(t *testing.T) {
	assert.True(t, invoice.Total(nil).IsZero())

	items := []invoice.LineItem{
		{GrossValue: dec(t, "12.30")},
		{GrossValue: dec(t, "7.70")},
	}
	assert.True(t, invoice.Total(items).Equal(dec(t, "20.00")))

	// A zero-quantity row contributes nothing but stays in the list.
	items = append(items, invoice.LineItem{Quantity: decimal.Zero})
	assert.Len(t, items, 3)
	assert.True(t, invoice.Total(items).Equal(dec(t, "20.00")))
}

func TestInsertItemAfter(t *testing.T) {
	first := invoice.LineItem{Name: "first"}
	second := invoice.LineItem{Name: "second"}
	items := []invoice.LineItem{first, second}

	got := invoice.InsertItemAfter(items, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, invoice.DefaultLineItem(), got[1])
	assert.Equal(t, "second", got[2].Name)

	// Defaults mirror the form seed row.
	assert.Equal(t, invoice.VATStandard, got[1].VAT)
	assert.True(t, got[1].Quantity.Equal(decimal.New(1, 0)))
	assert.Equal(t, invoice.MeasurePiece, got[1].Measure)

	// The input list is untouched.
	assert.Equal(t, []invoice.LineItem{first, second}, items)

	// Out-of-range indexes append at the end.
	got = invoice.InsertItemAfter(items, 10)
	require.Len(t, got, 3)
	assert.Equal(t, invoice.DefaultLineItem(), got[2])

	got = invoice.InsertItemAfter(nil, 0)
	require.Len(t, got, 1)
}

func TestRemoveItem(t *testing.T) {
	items := []invoice.LineItem{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got := invoice.RemoveItem(items, 1)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
	assert.Len(t, items, 3)

	// Removing the last remaining row leaves an empty list.
	got = invoice.RemoveItem([]invoice.LineItem{{Name: "only"}}, 0)
	assert.Empty(t, got)

	// Out-of-range removals change nothing.
	got = invoice.RemoveItem(items, 7)
	assert.Equal(t, items, got)
}
