// Package dbtest opens isolated in-memory sqlite databases carrying the full
// scanpos schema for package tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scanpos/scanpos-backend/pkg/config"
	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
	"github.com/scanpos/scanpos-backend/pkg/migrate"
)

// Open returns a migrated client that is closed when the test ends.
func Open(t testing.TB) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:scanpos_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, migrate.AutoMigrate(context.Background(), client.DB()))
	return client
}

// SeedItem inserts a live catalog item.
func SeedItem(t testing.TB, client *db.Client, name, barcode, price string, stocks int) *models.Item {
	t.Helper()
	item := &models.Item{
		ProductName: name,
		Barcode:     barcode,
		Price:       decimal.RequireFromString(price),
		Stocks:      stocks,
	}
	require.NoError(t, client.DB().Create(item).Error)
	return item
}

// Stock reads the current stock of id, ignoring soft deletes.
func Stock(t testing.TB, client *db.Client, id uint) int {
	t.Helper()
	var item models.Item
	require.NoError(t, client.DB().Unscoped().First(&item, id).Error)
	return item.Stocks
}
