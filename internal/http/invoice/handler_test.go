package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pkruczek/faktura/internal/contractor"
	invoicehttp "github.com/pkruczek/faktura/internal/http/invoice"
	"github.com/pkruczek/faktura/internal/invoice"
)

type stubContractors struct {
	contractors map[int64]*contractor.Contractor
}

func (s *stubContractors) Get(_ context.Context, id int64) (*contractor.Contractor, error) {
	ct, ok := s.contractors[id]
	if !ok {
		return nil, &contractor.FetchError{StatusCode: 404, Detail: "Not found."}
	}

	cp := *ct

	return &cp, nil
}

func int64p(v int64) *int64 { return &v }

func newServer(t *testing.T, repo invoice.Repository, contractors *stubContractors) *httptest.Server {
	t.Helper()

	if contractors == nil {
		contractors = &stubContractors{}
	}

	h := invoicehttp.NewHandler(invoice.NewService(repo), contractors)

	r := chi.NewRouter()
	r.Route("/invoices", h.Routes)
	r.Route("/summary", h.SummaryRoutes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func TestHandler_Get_Aggregate(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), int64(42)).Return(&invoice.Invoice{
		ID:         42,
		Date:       time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		DateOfSale: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		CustomerID: int64p(5),
	}, nil)

	srv := newServer(t, repo, &stubContractors{contractors: map[int64]*contractor.Contractor{
		5: {ID: 5, Name: "ACME", City: "Warszawa"},
	}})

	resp, err := http.Get(srv.URL + "/invoices/42")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID       int64  `json:"id"`
		Date     string `json:"date"`
		Fetched  bool   `json:"fetched"`
		Customer *struct {
			Name string `json:"name"`
		} `json:"customer"`
		Receiver *struct{} `json:"receiver"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, int64(42), body.ID)
	assert.Equal(t, "12.03.2024", body.Date)
	assert.True(t, body.Fetched)
	require.NotNil(t, body.Customer)
	assert.Equal(t, "ACME", body.Customer.Name)
	assert.Nil(t, body.Receiver)
}

func TestHandler_Get_FetchedDespiteContractorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), int64(42)).Return(&invoice.Invoice{
		ID:         42,
		CustomerID: int64p(999),
	}, nil)

	srv := newServer(t, repo, &stubContractors{})

	resp, err := http.Get(srv.URL + "/invoices/42")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Fetched  bool      `json:"fetched"`
		Customer *struct{} `json:"customer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.True(t, body.Fetched)
	assert.Nil(t, body.Customer)
}

func TestHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), int64(42)).Return(nil, invoice.ErrNotFound)

	srv := newServer(t, repo, nil)

	resp, err := http.Get(srv.URL + "/invoices/42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "detail")
}

func TestHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			// The stale wire value is ignored; the server recomputes.
			require.Len(t, inv.Items, 1)
			assert.Equal(t, "12.30", inv.Items[0].GrossValue.StringFixed(2))

			inv.ID = 7

			return nil
		})

	srv := newServer(t, repo, nil)

	payload := `{
		"branch": 1, "category": 2, "who": 3,
		"date": "12.03.2024", "date_of_sale": "12.03.2024",
		"payment_methods": "przelew", "payment_maturnity": "26.03.2024",
		"items": [{
			"name": "usluga", "single_price": "10.00", "vat": ".23",
			"quantity": "1", "measure": "szt", "value_vat": "999.99"
		}]
	}`

	resp, err := http.Post(srv.URL+"/invoices", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		ID    int64 `json:"id"`
		Items []struct {
			ValueVAT string `json:"value_vat"`
		} `json:"items"`
		TotalValue string `json:"total_value"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, int64(7), body.ID)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "12.3", body.Items[0].ValueVAT)
	assert.Equal(t, "12.3", body.TotalValue)
}

func TestHandler_Create_BadInput(t *testing.T) {
	tests := map[string]string{
		"BadDate":    `{"date": "2024-03-12", "date_of_sale": "12.03.2024", "items": []}`,
		"UnknownVAT": `{"date": "12.03.2024", "date_of_sale": "12.03.2024", "items": [{"single_price": "10.00", "vat": ".19", "quantity": "1"}]}`,
		"NotJSON":    `{`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv := newServer(t, invoice.NewMockRepository(ctrl), nil)

			resp, err := http.Post(srv.URL+"/invoices", "application/json", strings.NewReader(payload))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().ListInvoices(gomock.Any(), gomock.Any(), invoice.Page{Number: 2, Size: 30}).
		DoAndReturn(func(_ context.Context, filter invoice.ListFilter, _ invoice.Page) (*invoice.InvoicePage, error) {
			require.NotNil(t, filter.Branch)
			assert.Equal(t, "wro", *filter.Branch)
			require.NotNil(t, filter.IsDraft)
			assert.True(t, *filter.IsDraft)

			return &invoice.InvoicePage{
				Results: []*invoice.Invoice{
					{ID: 1, Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)},
				},
				CurrPage: 2,
				LastPage: 4,
				Count:    95,
			}, nil
		})

	srv := newServer(t, repo, nil)

	resp, err := http.Get(srv.URL + "/invoices?branch=wro&is_draft=true&page=2")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results  []json.RawMessage `json:"results"`
		CurrPage int               `json:"curr_page"`
		LastPage int               `json:"last_page"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Len(t, body.Results, 1)
	assert.Equal(t, 2, body.CurrPage)
	assert.Equal(t, 4, body.LastPage)
	assert.Equal(t, 95, body.Count)
}

func TestHandler_Issue(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), int64(7)).Return(&invoice.Invoice{
		ID:   7,
		Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	}, nil)
	repo.EXPECT().AssignNumber(gomock.Any(), int64(7), "FV/7/03/2024").Return(nil)

	srv := newServer(t, repo, nil)

	resp, err := http.Post(srv.URL+"/invoices/7/number", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UniqueNumber string `json:"unique_number"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "FV/7/03/2024", body.UniqueNumber)
}

func TestHandler_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().ListInvoices(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&invoice.InvoicePage{
			Results:  []*invoice.Invoice{{ID: 1, UniqueNumber: "FV/1/03/2024", Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)}},
			CurrPage: 1,
			LastPage: 1,
			Count:    1,
		}, nil)

	srv := newServer(t, repo, nil)

	resp, err := http.Get(srv.URL + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Invoices []struct {
			UniqueNumber string `json:"unique_number"`
		} `json:"invoices"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Invoices, 1)
	assert.Equal(t, "FV/1/03/2024", body.Invoices[0].UniqueNumber)
}
