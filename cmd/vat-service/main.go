package main

import (
	"fmt"
	"os"

	"github.com/nurpe/vat-invoicing/internal/auth"
	"github.com/nurpe/vat-invoicing/internal/config"
	"github.com/nurpe/vat-invoicing/internal/db"
	"github.com/nurpe/vat-invoicing/internal/excel"
	httphandler "github.com/nurpe/vat-invoicing/internal/http"
	"github.com/nurpe/vat-invoicing/internal/http/middleware"
	"github.com/nurpe/vat-invoicing/internal/logger"
	"github.com/nurpe/vat-invoicing/internal/pdf"
	"github.com/nurpe/vat-invoicing/internal/repository"
	"github.com/nurpe/vat-invoicing/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	invoiceRepo := repository.NewInvoiceRepository(database)
	excelGenerator := excel.NewGenerator()
	pdfGenerator := pdf.NewGenerator()

	invoiceService, err := service.NewInvoiceService(invoiceRepo, excelGenerator, pdfGenerator, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init invoice service")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(invoiceService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("jurisdiction", cfg.VAT.Jurisdiction).Msg("starting vat invoicing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
