// Package bootstrap builds the pieces shared by the API server and salesctl.
package bootstrap

import (
	"fmt"

	"github.com/sangkips/salesbook-api/internal/application/service"
	"github.com/sangkips/salesbook-api/internal/config"
	domainRepo "github.com/sangkips/salesbook-api/internal/domain/repository"
	"github.com/sangkips/salesbook-api/internal/infrastructure/database"
	"github.com/sangkips/salesbook-api/internal/infrastructure/repository"
	"github.com/sangkips/salesbook-api/internal/infrastructure/storage"
	"github.com/sangkips/salesbook-api/pkg/catalog"
	"go.uber.org/zap"
)

// OpenStore opens the sales store selected by STORE_DRIVER. The returned
// close function releases database connections and is never nil.
func OpenStore(cfg *config.Config, log *zap.Logger) (domainRepo.SalesStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		log.Info("using file sales store", zap.String("path", cfg.Store.Path))
		return storage.NewFileStore(cfg.Store.Path), noop, nil

	case config.StoreDriverPostgres:
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		if err := database.AutoMigrate(db, log); err != nil {
			_ = sqlDB.Close()
			return nil, noop, err
		}
		log.Info("using postgres sales store", zap.String("document", cfg.Store.Document))
		return repository.NewDocumentRepository(db, cfg.Store.Document), sqlDB.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewSaleService wires a SaleService from configuration. observer may be
// nil.
func NewSaleService(cfg *config.Config, store domainRepo.SalesStore, log *zap.Logger, observer service.OperationObserver) *service.SaleService {
	svcCfg := service.SaleServiceConfig{
		Observer:              observer,
		VerifyTotals:          cfg.Sales.VerifyTotals,
		StrictFilterOperators: cfg.Sales.StrictFilterOperators,
	}
	if cfg.Catalog.URL != "" {
		log.Info("checking products against catalog", zap.String("url", cfg.Catalog.URL))
		svcCfg.Catalog = catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Token, cfg.Catalog.Timeout)
	}
	return service.NewSaleService(store, log, svcCfg)
}
