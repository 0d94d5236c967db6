package contractor_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkruczek/faktura/internal/contractor"
)

func TestClient_Get(t *testing.T) {
	var gotAuth atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))

		assert.Equal(t, "/api/business/v1/contractors/5/", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 5, "name": "ACME Sp. z o.o.", "nip": "5260250274", "address": "ul. Prosta 1", "postal_code": "00-001", "city": "Warszawa"}`))
	}))
	defer srv.Close()

	client := contractor.NewClient(srv.URL, "s3cret")

	ct, err := client.Get(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Token s3cret", gotAuth.Load())
	assert.Equal(t, int64(5), ct.ID)
	assert.Equal(t, "ACME Sp. z o.o.", ct.Name)
	assert.Equal(t, "5260250274", ct.NIP)
	assert.Equal(t, "Warszawa", ct.City)
}

func TestClient_Get_CachesResults(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"id": 5, "name": "ACME"}`))
	}))
	defer srv.Close()

	client := contractor.NewClient(srv.URL, "", contractor.WithCacheTTL(time.Minute))

	first, err := client.Get(context.Background(), 5)
	require.NoError(t, err)

	second, err := client.Get(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, *first, *second)
	assert.NotSame(t, first, second)
}

func TestClient_Get_ErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "No Contractor matches the given query."}`))
	}))
	defer srv.Close()

	client := contractor.NewClient(srv.URL, "")

	_, err := client.Get(context.Background(), 5)

	var fetchErr *contractor.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "No Contractor matches the given query.", fetchErr.Detail)
}

func TestClient_Get_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := contractor.NewClient(srv.URL, "")

	_, err := client.Get(context.Background(), 5)

	var fetchErr *contractor.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), fetchErr.Detail)
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	// One token per second with the bucket drained means the second call has
	// to wait on the limiter; a cancelled context aborts that wait.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id": 5, "name": "ACME"}`))
	}))
	defer srv.Close()

	client := contractor.NewClient(srv.URL, "", contractor.WithRateLimit(1))

	_, err := client.Get(context.Background(), 5)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Get(ctx, 6)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
