// Package loader coordinates the invoice aggregate load: one primary
// invoice fetch followed by up to two contractor fetches, joined by an
// all-settle barrier before the aggregate is marked complete.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/invoice"
	"github.com/pkruczek/faktura/internal/state"
)

// Phase is where a load currently stands. Failed is reachable only from
// PrimaryLoading: contractor fetch failures are recorded but never fail the
// load as a whole.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePrimaryLoading
	PhaseContractorsLoading
	PhaseComplete
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePrimaryLoading:
		return "primary_loading"
	case PhaseContractorsLoading:
		return "contractors_loading"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	}

	return "unknown"
}

// InvoiceGetter is the primary fetch collaborator.
type InvoiceGetter interface {
	Get(ctx context.Context, id int64) (*invoice.Invoice, error)
}

// ContractorGetter is the dependent fetch collaborator.
type ContractorGetter interface {
	Get(ctx context.Context, id int64) (*contractor.Contractor, error)
}

type Loader struct {
	invoices    InvoiceGetter
	contractors ContractorGetter
	store       *state.Store

	flight singleflight.Group

	mu    sync.Mutex
	phase Phase
}

func New(invoices InvoiceGetter, contractors ContractorGetter, store *state.Store) *Loader {
	return &Loader{
		invoices:    invoices,
		contractors: contractors,
		store:       store,
	}
}

func (l *Loader) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.phase
}

func (l *Loader) setPhase(p Phase) {
	l.mu.Lock()
	l.phase = p
	l.mu.Unlock()
}

// Load fetches the invoice and its contractor records, dispatching each
// settled result into the state store, and returns the final snapshot.
// Concurrent calls for the same invoice share a single in-flight load.
// The returned error is non-nil only when the primary fetch failed; a load
// that completed with missing contractor slots is not an error.
func (l *Loader) Load(ctx context.Context, invoiceID int64) (state.State, error) {
	v, err, _ := l.flight.Do(strconv.FormatInt(invoiceID, 10), func() (any, error) {
		return l.load(ctx, invoiceID)
	})

	st, ok := v.(state.State)
	if !ok {
		st = l.store.State()
	}

	return st, err
}

func (l *Loader) load(ctx context.Context, invoiceID int64) (state.State, error) {
	loadID := uuid.New()

	l.setPhase(PhasePrimaryLoading)

	inv, err := l.invoices.Get(ctx, invoiceID)
	if err != nil {
		slog.Error("invoice fetch failed", "load_id", loadID, "invoice_id", invoiceID, "error", err)

		st := l.store.Dispatch(state.InvoicePrimaryRejected{Detail: errorDetail(err)})
		l.setPhase(PhaseFailed)

		return st, err
	}

	st := l.store.Dispatch(state.InvoicePrimaryFulfilled{Invoice: *inv})

	fetches := contractorFetches(inv)
	if len(fetches) == 0 {
		st = l.store.Dispatch(state.InvoiceLoadCompleted{})
		l.setPhase(PhaseComplete)

		return st, nil
	}

	l.setPhase(PhaseContractorsLoading)

	for _, res := range settleAll(ctx, l.contractors, fetches) {
		if res.err != nil {
			slog.Warn("contractor fetch failed",
				"load_id", loadID, "role", res.role, "contractor_id", res.id, "error", res.err)

			st = l.store.Dispatch(state.ContractorRejected{Role: res.role, Detail: errorDetail(res.err)})

			continue
		}

		st = l.store.Dispatch(state.ContractorFulfilled{Role: res.role, Contractor: *res.contractor})
	}

	st = l.store.Dispatch(state.InvoiceLoadCompleted{})
	l.setPhase(PhaseComplete)

	slog.Info("invoice load complete", "load_id", loadID, "invoice_id", invoiceID, "contractor_fetches", len(fetches))

	return st, nil
}

type roleFetch struct {
	role contractor.Role
	id   int64
}

// contractorFetches derives the dependent fetches from the primary result.
// Customer and receiver are issued independently even when they point at the
// same contractor id, because they fill distinct slots.
func contractorFetches(inv *invoice.Invoice) []roleFetch {
	var fetches []roleFetch

	if inv.CustomerID != nil {
		fetches = append(fetches, roleFetch{role: contractor.RoleCustomer, id: *inv.CustomerID})
	}

	if inv.ReceiverID != nil {
		fetches = append(fetches, roleFetch{role: contractor.RoleReceiver, id: *inv.ReceiverID})
	}

	return fetches
}

type settled struct {
	role       contractor.Role
	id         int64
	contractor *contractor.Contractor
	err        error
}

// settleAll issues every fetch concurrently and blocks until each one has
// settled, success or failure. Results come back in fetch order; the fetches
// themselves race and no ordering between them is guaranteed.
func settleAll(ctx context.Context, getter ContractorGetter, fetches []roleFetch) []settled {
	out := make([]settled, len(fetches))

	var wg sync.WaitGroup

	for i, f := range fetches {
		wg.Add(1)

		go func(i int, f roleFetch) {
			defer wg.Done()

			ct, err := getter.Get(ctx, f.id)
			out[i] = settled{role: f.role, id: f.id, contractor: ct, err: err}
		}(i, f)
	}

	wg.Wait()

	return out
}

// errorDetail extracts the user-facing detail payload from a fetch error.
func errorDetail(err error) string {
	var fetchErr *contractor.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Detail
	}

	return err.Error()
}
