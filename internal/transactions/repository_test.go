package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/db/dbtest"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
)

func seedTransaction(t *testing.T, client *db.Client, receipt string, payment string, createdAt time.Time, items ...*models.Item) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		ReceiptNumber: receipt,
		TotalPayment:  decimal.RequireFromString(payment),
		CreatedAt:     createdAt,
	}
	require.NoError(t, client.DB().Create(tx).Error)

	total := 0
	for i, item := range items {
		qty := i + 1
		line := &models.SaleLine{
			TransactionID: tx.ID,
			ItemID:        item.ID,
			Barcode:       item.Barcode,
			Quantity:      qty,
			Price:         item.Price,
			Sold:          createdAt,
		}
		require.NoError(t, client.DB().Create(line).Error)
		total += qty
	}
	require.NoError(t, client.DB().Model(tx).Update("total_items", total).Error)
	tx.TotalItems = total
	return tx
}

func TestCreateTransactionAddLinesAndFinalize(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	item := dbtest.SeedItem(t, client, "Cola", "4800001", "12.50", 10)
	repo := NewRepository(client.DB())

	tx, err := repo.CreateTransaction(ctx, "RCPT-0001", decimal.RequireFromString("100"))
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, 0, tx.TotalItems)

	sold := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	line, err := repo.AddSaleLine(ctx, SaleLineInput{
		TransactionID: tx.ID,
		ItemID:        item.ID,
		Barcode:       item.Barcode,
		Quantity:      3,
		Price:         item.Price,
		Sold:          sold,
	})
	require.NoError(t, err)
	assert.True(t, line.Subtotal().Equal(decimal.RequireFromString("37.5")))

	require.NoError(t, repo.FinalizeTotals(ctx, tx.ID, 3))

	stored, err := repo.FindByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalItems)
	assert.True(t, stored.TotalPayment.Equal(decimal.NewFromInt(100)))

	lines, err := repo.ListLinesForTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, lines[0].Sold.Equal(sold))
}

func TestCreateTransactionRejectsBlankReceiptAndDuplicates(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	_, err := repo.CreateTransaction(ctx, "  ", decimal.Zero)
	assert.Error(t, err)

	_, err = repo.CreateTransaction(ctx, "RCPT-DUP", decimal.Zero)
	require.NoError(t, err)
	_, err = repo.CreateTransaction(ctx, "RCPT-DUP", decimal.Zero)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestAddSaleLineValidatesInput(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())

	_, err := repo.AddSaleLine(context.Background(), SaleLineInput{TransactionID: 1, ItemID: 1, Quantity: 0})
	assert.Error(t, err)
	_, err = repo.AddSaleLine(context.Background(), SaleLineInput{ItemID: 1, Quantity: 1})
	assert.Error(t, err)
}

func TestFinalizeTotalsMissingTransaction(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	assert.Error(t, repo.FinalizeTotals(context.Background(), 999, 1))
}

func TestListWithLinesOrdersNewestFirstAndFilters(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	cola := dbtest.SeedItem(t, client, "Cola", "4800001", "12.50", 10)
	chips := dbtest.SeedItem(t, client, "Chips", "4800002", "20.00", 10)

	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	first := seedTransaction(t, client, "RCPT-A", "50", day(1), cola)
	second := seedTransaction(t, client, "RCPT-B", "100", day(2), cola, chips)
	third := seedTransaction(t, client, "RCPT-C", "20", day(3), chips)

	repo := NewRepository(client.DB())

	all, err := repo.ListWithLines(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)
	assert.Len(t, all[1].Lines, 2)

	from, to := day(2), day(3)
	filtered, err := repo.ListWithLines(ctx, Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "RCPT-B", filtered[0].ReceiptNumber)

	later := day(10)
	empty, err := repo.ListWithLines(ctx, Filter{From: &later})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListLinesForItemCarriesReceipt(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	cola := dbtest.SeedItem(t, client, "Cola", "4800001", "12.50", 10)
	chips := dbtest.SeedItem(t, client, "Chips", "4800002", "20.00", 10)

	seedTransaction(t, client, "RCPT-A", "50", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), cola)
	seedTransaction(t, client, "RCPT-B", "100", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), chips, cola)

	lines, err := NewRepository(client.DB()).ListLinesForItem(ctx, cola.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "RCPT-B", lines[0].ReceiptNumber)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "RCPT-A", lines[1].ReceiptNumber)

	none, err := NewRepository(client.DB()).ListLinesForItem(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSummaryUsesCapturedPrices(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	cola := dbtest.SeedItem(t, client, "Cola", "4800001", "12.50", 10)
	chips := dbtest.SeedItem(t, client, "Chips", "4800002", "20.00", 10)

	seedTransaction(t, client, "RCPT-A", "50", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), cola)
	seedTransaction(t, client, "RCPT-B", "100", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), cola, chips)

	// later price changes must not rewrite history
	require.NoError(t, client.DB().Model(cola).Update("price", decimal.NewFromInt(99)).Error)

	repo := NewRepository(client.DB())
	sum, err := repo.Summary(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Transactions)
	assert.Equal(t, int64(4), sum.ItemsSold)
	// 12.50 + (12.50 + 2*20.00)
	assert.True(t, sum.Revenue.Equal(decimal.RequireFromString("65")), sum.Revenue.String())
	assert.True(t, sum.PaymentsCollected.Equal(decimal.NewFromInt(150)), sum.PaymentsCollected.String())

	from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	sum, err = repo.Summary(ctx, Filter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.Transactions)
	assert.True(t, sum.Revenue.Equal(decimal.RequireFromString("52.5")), sum.Revenue.String())

	from = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sum, err = repo.Summary(ctx, Filter{From: &from})
	require.NoError(t, err)
	assert.Zero(t, sum.Transactions)
	assert.True(t, sum.Revenue.IsZero())
}

func TestSummaryKeepsCentPrecision(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	gum := dbtest.SeedItem(t, client, "Gum", "4800010", "0.10", 10)
	mint := dbtest.SeedItem(t, client, "Mint", "4800011", "0.20", 10)

	seedTransaction(t, client, "RCPT-C1", "0.10", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), gum)
	tx := seedTransaction(t, client, "RCPT-C2", "0.20", time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC))
	require.NoError(t, client.DB().Create(&models.SaleLine{
		TransactionID: tx.ID,
		ItemID:        mint.ID,
		Barcode:       mint.Barcode,
		Quantity:      1,
		Price:         mint.Price,
		Sold:          tx.CreatedAt,
	}).Error)

	sum, err := NewRepository(client.DB()).Summary(ctx, Filter{})
	require.NoError(t, err)
	assert.True(t, sum.Revenue.Equal(decimal.RequireFromString("0.30")), sum.Revenue.String())
	assert.True(t, sum.PaymentsCollected.Equal(decimal.RequireFromString("0.30")), sum.PaymentsCollected.String())
}
