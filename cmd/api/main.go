package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pkruczek/faktura/internal/catalog"
	catalogStore "github.com/pkruczek/faktura/internal/catalog/store"
	"github.com/pkruczek/faktura/internal/config"
	"github.com/pkruczek/faktura/internal/contractor"
	"github.com/pkruczek/faktura/internal/database"
	fakturaHttp "github.com/pkruczek/faktura/internal/http"
	catalogHandler "github.com/pkruczek/faktura/internal/http/catalog"
	invoiceHandler "github.com/pkruczek/faktura/internal/http/invoice"
	"github.com/pkruczek/faktura/internal/invoice"
	invoiceStore "github.com/pkruczek/faktura/internal/invoice/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		invoiceService = invoice.NewService(invoiceStore.New(db))
		catalogService = catalog.NewService(catalogStore.New(db))

		contractorClient = contractor.NewClient(
			cfg.Business.BaseURL,
			cfg.Business.Token,
			contractor.WithTimeout(cfg.Business.Timeout),
			contractor.WithRateLimit(cfg.Business.RateLimit),
			contractor.WithCacheTTL(cfg.Business.CacheTTL),
		)
	)

	var (
		invoicesH = invoiceHandler.NewHandler(invoiceService, contractorClient)
		catalogH  = catalogHandler.NewHandler(catalogService)
	)

	router := fakturaHttp.New(invoicesH, catalogH, cfg.Auth.JWTSecret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
