package state_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkruczek/faktura/internal/catalog"
	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/invoice"
	"github.com/pkruczek/faktura/internal/state"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)

	return d
}

func int64p(v int64) *int64 { return &v }

func TestInvoiceReducer_LoadSequence(t *testing.T) {
	st := state.Initial()

	st = st.Reduce(state.InvoicePrimaryFulfilled{Invoice: invoice.Invoice{
		ID:         42,
		CustomerID: int64p(5),
		Items:      []invoice.LineItem{{Name: "usluga"}},
	}})

	// Scalar fields land immediately; contractor slots stay empty and the
	// aggregate is not yet fetched.
	assert.Equal(t, int64(42), st.Invoice.Invoice.ID)
	assert.Nil(t, st.Invoice.Invoice.Customer)
	assert.False(t, st.Invoice.Fetched)

	st = st.Reduce(state.ContractorFulfilled{
		Role:       contractor.RoleCustomer,
		Contractor: contractor.Contractor{ID: 5, Name: "ACME"},
	})
	require.NotNil(t, st.Invoice.Invoice.Customer)
	assert.Equal(t, "ACME", st.Invoice.Invoice.Customer.Name)
	assert.Nil(t, st.Invoice.Invoice.Receiver)

	st = st.Reduce(state.InvoiceLoadCompleted{})
	assert.True(t, st.Invoice.Fetched)
}

func TestInvoiceReducer_SameContractorBothRoles(t *testing.T) {
	st := state.Initial()

	ct := contractor.Contractor{ID: 5, Name: "ACME"}
	st = st.Reduce(state.ContractorFulfilled{Role: contractor.RoleCustomer, Contractor: ct})
	st = st.Reduce(state.ContractorFulfilled{Role: contractor.RoleReceiver, Contractor: ct})

	require.NotNil(t, st.Invoice.Invoice.Customer)
	require.NotNil(t, st.Invoice.Invoice.Receiver)
	assert.NotSame(t, st.Invoice.Invoice.Customer, st.Invoice.Invoice.Receiver)
	assert.Equal(t, *st.Invoice.Invoice.Customer, *st.Invoice.Invoice.Receiver)
}

func TestInvoiceReducer_Rejections(t *testing.T) {
	st := state.Initial()

	st = st.Reduce(state.InvoicePrimaryRejected{Detail: "not found"})
	assert.Equal(t, "not found", st.Invoice.Err)
	assert.False(t, st.Invoice.Fetched)

	// A contractor rejection leaves the slot empty and does not block
	// completion.
	st = state.Initial()
	st = st.Reduce(state.ContractorRejected{Role: contractor.RoleReceiver, Detail: "gone"})
	st = st.Reduce(state.InvoiceLoadCompleted{})
	assert.Nil(t, st.Invoice.Invoice.Receiver)
	assert.True(t, st.Invoice.Fetched)
}

func TestInvoiceReducer_CopyOnWrite(t *testing.T) {
	before := state.Initial().Reduce(state.InvoicePrimaryFulfilled{Invoice: invoice.Invoice{
		Items: []invoice.LineItem{{Name: "a"}, {Name: "b"}},
	}})

	after := before.Reduce(state.ItemRemoved{Index: 0})
	require.Len(t, after.Invoice.Invoice.Items, 1)

	// The prior snapshot is untouched.
	require.Len(t, before.Invoice.Invoice.Items, 2)
	assert.Equal(t, "a", before.Invoice.Invoice.Items[0].Name)
	assert.False(t, before.Invoice.Fetched)
}

func TestInvoiceReducer_ItemChanged(t *testing.T) {
	base := state.Initial().Reduce(state.InvoicePrimaryFulfilled{Invoice: invoice.Invoice{
		Items: []invoice.LineItem{
			{
				NetUnitPrice: dec(t, "10.00"),
				VAT:          invoice.VATStandard,
				Quantity:     dec(t, "1"),
				GrossValue:   dec(t, "12.30"),
				PKWiU:        "62.01",
			},
			{GrossValue: dec(t, "5.00")},
		},
	}})

	t.Run("PriceChangeRecomputes", func(t *testing.T) {
		edited := base.Invoice.Invoice.Items[0]
		edited.NetUnitPrice = dec(t, "20.00")

		st := base.Reduce(state.ItemChanged{Index: 0, Item: edited})
		assert.True(t, st.Invoice.Invoice.Items[0].GrossValue.Equal(dec(t, "24.60")))
		// Sibling rows are untouched.
		assert.True(t, st.Invoice.Invoice.Items[1].GrossValue.Equal(dec(t, "5.00")))
	})

	t.Run("DescriptiveChangeKeepsGross", func(t *testing.T) {
		edited := base.Invoice.Invoice.Items[0]
		edited.PKWiU = "62.02"

		st := base.Reduce(state.ItemChanged{Index: 0, Item: edited})
		assert.True(t, st.Invoice.Invoice.Items[0].GrossValue.Equal(dec(t, "12.30")))
		assert.Equal(t, "62.02", st.Invoice.Invoice.Items[0].PKWiU)
	})

	t.Run("NegativeEditIgnored", func(t *testing.T) {
		edited := base.Invoice.Invoice.Items[0]
		edited.NetUnitPrice = dec(t, "-1.00")

		st := base.Reduce(state.ItemChanged{Index: 0, Item: edited})
		assert.True(t, st.Invoice.Invoice.Items[0].GrossValue.Equal(dec(t, "12.30")))
		assert.True(t, st.Invoice.Invoice.Items[0].NetUnitPrice.Equal(dec(t, "10.00")))
	})

	t.Run("OutOfRangeIgnored", func(t *testing.T) {
		st := base.Reduce(state.ItemChanged{Index: 9, Item: invoice.LineItem{}})
		assert.Equal(t, base.Invoice, st.Invoice)
	})
}

func TestInvoiceReducer_ItemInsertRemove(t *testing.T) {
	st := state.Initial().Reduce(state.InvoicePrimaryFulfilled{Invoice: invoice.Invoice{
		Items: []invoice.LineItem{{Name: "a"}, {Name: "b"}},
	}})

	st = st.Reduce(state.ItemInserted{Index: 0})
	require.Len(t, st.Invoice.Invoice.Items, 3)
	assert.Equal(t, "a", st.Invoice.Invoice.Items[0].Name)
	assert.Equal(t, invoice.VATStandard, st.Invoice.Invoice.Items[1].VAT)
	assert.Equal(t, "b", st.Invoice.Invoice.Items[2].Name)

	st = st.Reduce(state.ItemRemoved{Index: 2})
	st = st.Reduce(state.ItemRemoved{Index: 1})
	st = st.Reduce(state.ItemRemoved{Index: 0})
	assert.Empty(t, st.Invoice.Invoice.Items)
	assert.True(t, st.Invoice.Total().IsZero())
}

func TestInvoiceState_Total(t *testing.T) {
	st := state.Initial()
	assert.True(t, st.Invoice.Total().IsZero())

	st = st.Reduce(state.InvoicePrimaryFulfilled{Invoice: invoice.Invoice{
		Items: []invoice.LineItem{
			{GrossValue: dec(t, "12.30")},
			{GrossValue: dec(t, "7.70")},
		},
	}})
	assert.True(t, st.Invoice.Total().Equal(dec(t, "20.00")))
}

func TestCategoryListReducer(t *testing.T) {
	st := state.Initial()
	assert.Equal(t, 1, st.Categories.Pagination.CurrPage)

	st = st.Reduce(state.CategoryListFulfilled{
		Results:  []catalog.Category{{ID: 1, Name: "Sprzedaz", Shortname: "spr"}},
		CurrPage: 2,
		LastPage: 4,
		Count:    120,
	})
	assert.True(t, st.Categories.Fetched)
	assert.Len(t, st.Categories.Data, 1)
	assert.Equal(t, state.Pagination{CurrPage: 2, LastPage: 4, Count: 120}, st.Categories.Pagination)

	st = st.Reduce(state.CategoryListRejected{Detail: "boom"})
	assert.Equal(t, "boom", st.Categories.Err)
}

func TestSummaryReducer(t *testing.T) {
	st := state.Initial()

	st = st.Reduce(state.SummaryFulfilled{Invoices: []invoice.SummaryRow{{ID: 1}}})
	assert.True(t, st.Summary.Fetched)
	assert.Len(t, st.Summary.Invoices, 1)

	st = st.Reduce(state.SummaryRejected{Detail: "boom"})
	assert.Equal(t, "boom", st.Summary.Err)
}

func TestStore_DispatchReplacesState(t *testing.T) {
	store := state.NewStore()

	before := store.State()
	after := store.Dispatch(state.InvoiceLoadCompleted{})

	assert.False(t, before.Invoice.Fetched)
	assert.True(t, after.Invoice.Fetched)
	assert.True(t, store.State().Invoice.Fetched)
}
