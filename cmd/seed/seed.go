package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/scanpos/scanpos-backend/pkg/db/models"
)

type itemSeeder interface {
	List(ctx context.Context, search string) ([]models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
}

var demoItems = []struct {
	name    string
	barcode string
	price   string
	stocks  int
}{
	{"Coca-Cola 1.5L", "4801981118502", "62.00", 48},
	{"Lucky Me Pancit Canton", "4807770270017", "16.50", 120},
	{"Bear Brand Milk 300ml", "4800361382106", "38.00", 60},
	{"Skyflakes Crackers", "4800016644290", "8.75", 200},
	{"Nescafe Classic 50g", "4800361004282", "89.00", 35},
	{"Safeguard Soap 135g", "4902430432612", "54.25", 40},
	{"Datu Puti Vinegar 1L", "4800249000012", "42.00", 25},
	{"Rebisco Sandwich", "4800092330011", "9.50", 150},
}

// seedItems inserts the demo catalog when no live item exists and reports how
// many rows it created.
func seedItems(ctx context.Context, repo itemSeeder) (int, error) {
	existing, err := repo.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, demo := range demoItems {
		price, err := decimal.NewFromString(demo.price)
		if err != nil {
			return i, fmt.Errorf("parse price for %s: %w", demo.barcode, err)
		}
		item := &models.Item{
			ProductName: demo.name,
			Barcode:     demo.barcode,
			Price:       price,
			Stocks:      demo.stocks,
		}
		if _, err := repo.Create(ctx, item); err != nil {
			return i, fmt.Errorf("create %s: %w", demo.barcode, err)
		}
	}
	return len(demoItems), nil
}
