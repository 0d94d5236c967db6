package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkruczek/faktura/internal/catalog"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.categories)
}

func (h *Handler) BranchRoutes(r chi.Router) {
	r.Get("/", h.branches)
}

func (h *Handler) UserRoutes(r chi.Router) {
	r.Get("/", h.users)
}

type categoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Shortname string `json:"shortname"`
}

type categoryPageResponse struct {
	Results  []categoryResponse `json:"results"`
	CurrPage int                `json:"curr_page"`
	LastPage int                `json:"last_page"`
	Count    int                `json:"count"`
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	page := catalog.Page{}
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			page.Number = n
		}
	}

	categories, err := h.svc.Categories(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	results := make([]categoryResponse, 0, len(categories.Results))
	for _, c := range categories.Results {
		results = append(results, categoryResponse{ID: c.ID, Name: c.Name, Shortname: c.Shortname})
	}

	writeJSON(w, http.StatusOK, categoryPageResponse{
		Results:  results,
		CurrPage: categories.CurrPage,
		LastPage: categories.LastPage,
		Count:    categories.Count,
	})
}

type branchResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Shortname string `json:"shortname"`
}

func (h *Handler) branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.svc.Branches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	results := make([]branchResponse, 0, len(branches))
	for _, b := range branches {
		results = append(results, branchResponse{ID: b.ID, Name: b.Name, Shortname: b.Shortname})
	}

	writeJSON(w, http.StatusOK, results)
}

type userResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	DefaultBranch int64  `json:"default_branch"`
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	results := make([]userResponse, 0, len(users))
	for _, u := range users {
		results = append(results, userResponse{ID: u.ID, Name: u.Name, Email: u.Email, DefaultBranch: u.DefaultBranch})
	}

	writeJSON(w, http.StatusOK, results)
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
