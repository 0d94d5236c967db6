package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkruczek/faktura/internal/invoice"
	"github.com/pkruczek/faktura/internal/loader"
	"github.com/pkruczek/faktura/internal/state"
)

type Handler struct {
	svc         *invoice.Service
	contractors loader.ContractorGetter
}

func NewHandler(svc *invoice.Service, contractors loader.ContractorGetter) *Handler {
	return &Handler{svc: svc, contractors: contractors}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/number", h.issue)
}

func (h *Handler) SummaryRoutes(r chi.Router) {
	r.Get("/", h.summary)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, page := listQuery(r)

	invoices, err := h.svc.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(invoices))
}

// get assembles the full invoice aggregate: the invoice itself plus its
// contractor slots, loaded through the orchestrator. The response carries
// fetched=true even when a contractor fetch failed and left its slot empty.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	ldr := loader.New(h.svc, h.contractors, state.NewStore())

	st, err := ldr.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}

		writeError(w, http.StatusInternalServerError, st.Invoice.Err)

		return
	}

	writeJSON(w, http.StatusOK, toAggregateResponse(st.Invoice))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), inv)
	if err != nil {
		if errors.Is(err, invoice.ErrNegativeAmount) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv.ID = id

	if err := h.svc.Update(r.Context(), inv); err != nil {
		switch {
		case errors.Is(err, invoice.ErrNotFound):
			writeError(w, http.StatusNotFound, "invoice not found")
		case errors.Is(err, invoice.ErrNegativeAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	inv, err := h.svc.Issue(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}

		writeError(w, http.StatusConflict, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            inv.ID,
		"unique_number": inv.UniqueNumber,
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, _ := listQuery(r)

	rows, err := h.svc.Summary(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(rows))
}

func listQuery(r *http.Request) (invoice.ListFilter, invoice.Page) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("branch"); s != "" {
		filter.Branch = &s
	}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = &s
	}

	if s := r.URL.Query().Get("payment_methods"); s != "" {
		filter.PaymentMethod = &s
	}

	if s := r.URL.Query().Get("is_draft"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			filter.IsDraft = &b
		}
	}

	if s := r.URL.Query().Get("is_paid"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			filter.IsPaid = &b
		}
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	page := invoice.Page{}
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			page.Number = n
		}
	}

	return filter, page
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
