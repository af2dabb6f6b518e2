package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanpos/scanpos-backend/internal/transactions"
	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/db/dbtest"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
)

type serviceFixture struct {
	client *db.Client
	masker *idmask.Codec
	svc    Service
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	client := dbtest.Open(t)
	masker, err := idmask.New("catalog-test-secret")
	require.NoError(t, err)
	svc, err := NewService(NewRepository(client.DB()), transactions.NewRepository(client.DB()), masker)
	require.NoError(t, err)
	return serviceFixture{client: client, masker: masker, svc: svc}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	masker, err := idmask.New("secret")
	require.NoError(t, err)
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)

	_, err = NewService(nil, transactions.NewRepository(conn), masker)
	assert.Error(t, err)
	_, err = NewService(repo, nil, masker)
	assert.Error(t, err)
	_, err = NewService(repo, transactions.NewRepository(conn), nil)
	assert.Error(t, err)
}

func TestLookupBarcode(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	item := dbtest.SeedItem(t, f.client, "Cola", "4800001", "12.50", 5)

	found, err := f.svc.LookupBarcode(ctx, " 4800001 ")
	require.NoError(t, err)
	require.True(t, found.Found())
	assert.Equal(t, "Cola", *found.Name)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("12.5")))
	id, err := f.masker.Unmask(idmask.KindItem, found.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, id)

	missing, err := f.svc.LookupBarcode(ctx, "0000000")
	require.NoError(t, err)
	assert.False(t, missing.Found())
	assert.Nil(t, missing.Name)
	assert.Empty(t, missing.ID)

	_, err = f.svc.LookupBarcode(ctx, "   ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateItemValidatesAndRejectsDuplicateBarcode(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	created, err := f.svc.CreateItem(ctx, ItemInput{
		ProductName: "  Bread ",
		Price:       decimal.RequireFromString("45.005"),
		Stocks:      4,
		Barcode:     "4800100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bread", created.ProductName)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("45.01")))

	_, err = f.svc.CreateItem(ctx, ItemInput{ProductName: "Other", Price: decimal.NewFromInt(1), Barcode: "4800100"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	cases := []ItemInput{
		{ProductName: "", Price: decimal.NewFromInt(1), Barcode: "x"},
		{ProductName: "x", Price: decimal.NewFromInt(1), Barcode: " "},
		{ProductName: "x", Price: decimal.NewFromInt(-1), Barcode: "x"},
		{ProductName: "x", Price: decimal.NewFromInt(1), Stocks: -2, Barcode: "x"},
	}
	for _, in := range cases {
		_, err := f.svc.CreateItem(ctx, in)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "input %+v", in)
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	item := dbtest.SeedItem(t, f.client, "Cola", "4800001", "12.50", 5)
	dbtest.SeedItem(t, f.client, "Chips", "4800002", "20.00", 5)
	maskedID := f.masker.Mask(idmask.KindItem, item.ID)

	updated, err := f.svc.UpdateItem(ctx, maskedID, ItemInput{
		ProductName: "Cola 1L",
		Price:       decimal.RequireFromString("15"),
		Stocks:      9,
		Barcode:     "4800001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola 1L", updated.ProductName)
	assert.Equal(t, 9, updated.Stocks)

	_, err = f.svc.UpdateItem(ctx, maskedID, ItemInput{ProductName: "Cola", Price: decimal.NewFromInt(1), Barcode: "4800002"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	_, err = f.svc.UpdateItem(ctx, "garbage", ItemInput{ProductName: "Cola", Price: decimal.NewFromInt(1), Barcode: "1"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteItemHidesItFromLookup(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	item := dbtest.SeedItem(t, f.client, "Cola", "4800001", "12.50", 5)
	maskedID := f.masker.Mask(idmask.KindItem, item.ID)

	require.NoError(t, f.svc.DeleteItem(ctx, maskedID))

	lookup, err := f.svc.LookupBarcode(ctx, "4800001")
	require.NoError(t, err)
	assert.False(t, lookup.Found())

	err = f.svc.DeleteItem(ctx, maskedID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	items, err := f.svc.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemHistory(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	item := dbtest.SeedItem(t, f.client, "Cola", "4800001", "12.50", 5)
	txRepo := transactions.NewRepository(f.client.DB())

	for i, receipt := range []string{"RCPT-1", "RCPT-2"} {
		tx, err := txRepo.CreateTransaction(ctx, receipt, decimal.NewFromInt(100))
		require.NoError(t, err)
		_, err = txRepo.AddSaleLine(ctx, transactions.SaleLineInput{
			TransactionID: tx.ID,
			ItemID:        item.ID,
			Barcode:       item.Barcode,
			Quantity:      i + 1,
			Price:         item.Price,
			Sold:          time.Date(2025, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	history, err := f.svc.ItemHistory(ctx, f.masker.Mask(idmask.KindItem, item.ID))
	require.NoError(t, err)
	assert.Equal(t, "Cola", history.Item.ProductName)
	assert.Equal(t, 3, history.UnitsSold)
	require.Len(t, history.Sales, 2)
	assert.Equal(t, "RCPT-2", history.Sales[0].ReceiptNumber)
	assert.True(t, history.Sales[0].Subtotal.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "RCPT-1", history.Sales[1].ReceiptNumber)

	_, err = f.svc.ItemHistory(ctx, f.masker.Mask(idmask.KindTransaction, item.ID))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
