package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pkruczek/faktura/internal/http/catalog"
	"github.com/pkruczek/faktura/internal/http/invoice"
)

func New(
	invoicesV1 *invoice.Handler,
	catalogV1 *catalog.Handler,
	jwtSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/sale/v1", func(r chi.Router) {
		r.Use(RequireAuth(jwtSecret))

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})

		r.Route("/categories", catalogV1.CategoryRoutes)
		r.Route("/branches", catalogV1.BranchRoutes)
		r.Route("/users", catalogV1.UserRoutes)
		r.Route("/summary", invoicesV1.SummaryRoutes)
	})

	return router
}
