package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/application/service"
	"github.com/sangkips/salesbook-api/internal/bootstrap"
	"github.com/sangkips/salesbook-api/internal/config"
	"github.com/sangkips/salesbook-api/internal/infrastructure/repository"
	"github.com/sangkips/salesbook-api/internal/presentation/http/handler"
	"github.com/sangkips/salesbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/salesbook-api/internal/presentation/http/routes"
	"github.com/sangkips/salesbook-api/pkg/logger"
	"github.com/sangkips/salesbook-api/pkg/metrics"
	"github.com/sangkips/salesbook-api/pkg/printer"
	"github.com/sangkips/salesbook-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger until configuration is known
	bootLog, _ := zap.NewProduction()
	zap.ReplaceGlobals(bootLog)

	cfg := config.Load()

	log, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		bootLog.Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open sales store", zap.Error(err))
	}
	defer func() { _ = closeStore() }()

	m := metrics.New()
	saleService := bootstrap.NewSaleService(cfg, store, log, m)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(thermalPrinter, saleService, log, service.PrinterServiceConfig{
		Type:      cfg.Printer.Type,
		StoreName: cfg.Printer.StoreName,
		Width:     cfg.Printer.Width,
	})

	idempotencyRepo := repository.NewIdempotencyRepository()
	go middleware.SweepIdempotencyKeys(ctx, idempotencyRepo, time.Hour, log)

	var verifier *utils.TokenVerifier
	if cfg.Auth.Secret != "" {
		verifier = utils.NewTokenVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
	} else {
		log.Warn("AUTH_JWT_SECRET is not set, sales routes are unauthenticated")
	}

	router := routes.Setup(&routes.Handlers{
		Sale:    handler.NewSaleHandler(saleService),
		Printer: handler.NewPrinterHandler(printerService),
	}, &routes.Deps{
		Cfg:     cfg,
		Logger:  log,
		Metrics: m,
		RateLimiter: middleware.NewClientRateLimiter(ctx, middleware.RateLimiterConfigFor(
			cfg.RateLimit.Requests,
			time.Duration(cfg.RateLimit.Duration)*time.Second,
		)),
		IdempotencyRepo: idempotencyRepo,
		Verifier:        verifier,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
