package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GabrielMottaBecker/vendify/internal/domain"
	"github.com/GabrielMottaBecker/vendify/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

// seedFile описывает JSON-файл с данными для загрузки в базу.
type seedFile struct {
	Products     []seedProduct `json:"products"`
	Customers    []seedParty   `json:"customers"`
	Salespersons []seedParty   `json:"salespersons"`
}

type seedProduct struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price"`
	OnHand      int32  `json:"on_hand"`
	Active      *bool  `json:"active"`
}

type seedParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func main() {
	var (
		dsn  string
		path string
	)

	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: VENDIFY_POSTGRES_DSN)")
	flag.StringVar(&path, "file", "", "JSON seed file; built-in demo catalog when empty")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("VENDIFY_POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("VENDIFY_POSTGRES_DSN (or -dsn) is required")
	}

	data, err := loadSeed(path)
	if err != nil {
		fail("load seed data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := applySeed(ctx, store, data); err != nil {
		fail("apply seed: %v", err)
	}

	fmt.Printf("seed ok: products=%d customers=%d salespersons=%d\n",
		len(data.Products), len(data.Customers), len(data.Salespersons))
}

// loadSeed читает seed-файл либо возвращает встроенный демо-набор.
func loadSeed(path string) (seedFile, error) {
	if strings.TrimSpace(path) == "" {
		return demoSeed(), nil
	}

	// #nosec G304 -- path is an explicit CLI parameter for local seeding.
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, err
	}

	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return seedFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}

// applySeed загружает данные идемпотентно: повторный запуск обновляет
// существующие записи вместо дублирования.
func applySeed(ctx context.Context, store *postgres.Store, data seedFile) error {
	products := postgres.NewProductRepository(store)
	directory := postgres.NewDirectory(store)

	for _, p := range data.Products {
		price, err := decimal.NewFromString(p.UnitPrice)
		if err != nil {
			return fmt.Errorf("product %s: parse unit_price %q: %w", p.ID, p.UnitPrice, err)
		}
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		product := domain.Product{
			ID:          p.ID,
			Description: p.Description,
			UnitPrice:   price,
			OnHand:      p.OnHand,
			Active:      active,
		}
		if err := products.Upsert(ctx, product); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	for _, c := range data.Customers {
		if err := directory.AddCustomer(ctx, c.ID, c.Name); err != nil {
			return fmt.Errorf("upsert customer %s: %w", c.ID, err)
		}
	}
	for _, s := range data.Salespersons {
		if err := directory.AddSalesperson(ctx, s.ID, s.Name); err != nil {
			return fmt.Errorf("upsert salesperson %s: %w", s.ID, err)
		}
	}

	return nil
}

func demoSeed() seedFile {
	return seedFile{
		Products: []seedProduct{
			{ID: "prod-notebook", Description: "Caderno universitário", UnitPrice: "14.90", OnHand: 120},
			{ID: "prod-pen", Description: "Caneta esferográfica azul", UnitPrice: "2.50", OnHand: 500},
			{ID: "prod-backpack", Description: "Mochila escolar", UnitPrice: "89.90", OnHand: 35},
			{ID: "prod-calculator", Description: "Calculadora científica", UnitPrice: "57.30", OnHand: 18},
		},
		Customers: []seedParty{
			{ID: "cust-demo", Name: "Cliente Demo"},
		},
		Salespersons: []seedParty{
			{ID: "sales-demo", Name: "Vendedor Demo"},
		},
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
