package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/storage/memory"
	"github.com/GabrielMottaBecker/vendify/internal/storage/postgres"
)

// Dependencies содержит хранилища, от которых зависит движок продаж.
type Dependencies struct {
	Orders    domain.OrderRepository
	Ledger    domain.ProductLedger
	Catalog   domain.ProductCatalog
	Directory domain.PartyDirectory
	Outbox    domain.OutboxRepository
	Reports   domain.ReportSource

	Ping  func(ctx context.Context) error
	Close func() error
}

// initStorage инициализирует хранилище согласно конфигурации.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return initPostgresStorage(ctx, cfg, logger)
	case StorageDriverMemory, "":
		return initMemoryStorage(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func initMemoryStorage(cfg Config, logger *log.Entry) *Dependencies {
	products := memory.NewProductStore()
	orders := memory.NewOrderRepository(products)
	directory := memory.NewDirectory()

	if cfg.SeedDemoData {
		seedDemoData(products, directory)
		logger.Info("in-memory storage seeded with demo catalog")
	}

	logger.Info("using in-memory storage")
	return &Dependencies{
		Orders:    orders,
		Ledger:    products,
		Catalog:   products,
		Directory: directory,
		Outbox:    memory.NewOutboxRepository(),
		Reports:   memory.NewReportSource(products, orders),
		Ping:      func(context.Context) error { return nil },
		Close:     func() error { return nil },
	}
}

func initPostgresStorage(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	products := postgres.NewProductRepository(store)
	logger.Info("using postgres storage")
	return &Dependencies{
		Orders:    postgres.NewOrderRepository(store),
		Ledger:    products,
		Catalog:   products,
		Directory: postgres.NewDirectory(store),
		Outbox:    postgres.NewOutboxRepository(store),
		Reports:   postgres.NewReportSource(store),
		Ping:      store.Ping,
		Close:     store.Close,
	}, nil
}

// seedDemoData наполняет память небольшим каталогом, чтобы API
// можно было пробовать сразу после запуска без базы.
func seedDemoData(products *memory.ProductStore, directory *memory.Directory) {
	demo := []domain.Product{
		{ID: "prod-notebook", Description: "Caderno universitário", UnitPrice: decimal.RequireFromString("14.90"), OnHand: 120, Active: true},
		{ID: "prod-pen", Description: "Caneta esferográfica azul", UnitPrice: decimal.RequireFromString("2.50"), OnHand: 500, Active: true},
		{ID: "prod-backpack", Description: "Mochila escolar", UnitPrice: decimal.RequireFromString("89.90"), OnHand: 35, Active: true},
		{ID: "prod-calculator", Description: "Calculadora científica", UnitPrice: decimal.RequireFromString("57.30"), OnHand: 18, Active: true},
	}
	for _, product := range demo {
		products.Put(product)
	}

	directory.AddCustomer("cust-demo")
	directory.AddSalesperson("sales-demo")
}
