package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scanpos/scanpos-backend/internal/repo"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
)

// Filter bounds listings and summaries to transactions created in [From, To).
type Filter struct {
	From *time.Time
	To   *time.Time
}

// SaleLineInput is one persisted line of a checkout.
type SaleLineInput struct {
	TransactionID uint
	ItemID        uint
	Barcode       string
	Quantity      int
	Price         decimal.Decimal
	Sold          time.Time
}

// TransactionWithLines pairs a transaction with its sale lines.
type TransactionWithLines struct {
	models.Transaction
	Lines []models.SaleLine
}

// LineWithReceipt is a sale line annotated with its owning receipt number.
type LineWithReceipt struct {
	models.SaleLine
	ReceiptNumber string
}

// SalesSummary aggregates the transactions matched by a Filter.
type SalesSummary struct {
	Transactions      int64
	ItemsSold         int64
	Revenue           decimal.Decimal
	PaymentsCollected decimal.Decimal
}

// Repository persists transactions and their sale lines.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// CreateTransaction inserts the header row; TotalItems stays 0 until FinalizeTotals.
func (r *Repository) CreateTransaction(ctx context.Context, receiptLabel string, totalPayment decimal.Decimal) (*models.Transaction, error) {
	receiptLabel = strings.TrimSpace(receiptLabel)
	if receiptLabel == "" {
		return nil, fmt.Errorf("receipt label is required")
	}
	tx := &models.Transaction{
		ReceiptNumber: receiptLabel,
		TotalPayment:  totalPayment,
	}
	if err := r.DB(ctx).Create(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

// AddSaleLine inserts one line for an already created transaction.
func (r *Repository) AddSaleLine(ctx context.Context, input SaleLineInput) (*models.SaleLine, error) {
	if input.TransactionID == 0 || input.ItemID == 0 {
		return nil, fmt.Errorf("transaction and item ids are required")
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("sale line quantity must be positive, got %d", input.Quantity)
	}
	line := &models.SaleLine{
		TransactionID: input.TransactionID,
		ItemID:        input.ItemID,
		Barcode:       input.Barcode,
		Quantity:      input.Quantity,
		Price:         input.Price,
		Sold:          input.Sold,
	}
	if err := r.DB(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// FinalizeTotals records the unit count once every line has been written.
func (r *Repository) FinalizeTotals(ctx context.Context, transactionID uint, totalItems int) error {
	res := r.DB(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", transactionID).
		Update("total_items", totalItems)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID loads one transaction header.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.DB(ctx).First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListWithLines returns matching transactions newest first, each with its lines.
func (r *Repository) ListWithLines(ctx context.Context, filter Filter) ([]TransactionWithLines, error) {
	var headers []models.Transaction
	err := applyFilter(r.DB(ctx).Model(&models.Transaction{}), filter).
		Order("created_at DESC").
		Order("id DESC").
		Find(&headers).Error
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return []TransactionWithLines{}, nil
	}

	ids := make([]uint, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}

	var lines []models.SaleLine
	err = r.DB(ctx).
		Where("transactions_id IN ?", ids).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}

	byTx := make(map[uint][]models.SaleLine, len(headers))
	for _, line := range lines {
		byTx[line.TransactionID] = append(byTx[line.TransactionID], line)
	}

	out := make([]TransactionWithLines, 0, len(headers))
	for _, h := range headers {
		out = append(out, TransactionWithLines{Transaction: h, Lines: byTx[h.ID]})
	}
	return out, nil
}

// ListLinesForTransaction returns the lines of one transaction in insertion order.
func (r *Repository) ListLinesForTransaction(ctx context.Context, transactionID uint) ([]models.SaleLine, error) {
	var lines []models.SaleLine
	err := r.DB(ctx).
		Where("transactions_id = ?", transactionID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ListLinesForItem returns every sale of an item, newest first, with receipt numbers.
func (r *Repository) ListLinesForItem(ctx context.Context, itemID uint) ([]LineWithReceipt, error) {
	var lines []models.SaleLine
	err := r.DB(ctx).
		Where("items_id = ?", itemID).
		Order("sold DESC").
		Order("id DESC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []LineWithReceipt{}, nil
	}

	txIDs := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.TransactionID]; ok {
			continue
		}
		seen[line.TransactionID] = struct{}{}
		txIDs = append(txIDs, line.TransactionID)
	}

	var headers []models.Transaction
	if err := r.DB(ctx).Unscoped().Where("id IN ?", txIDs).Find(&headers).Error; err != nil {
		return nil, err
	}
	receipts := make(map[uint]string, len(headers))
	for _, h := range headers {
		receipts[h.ID] = h.ReceiptNumber
	}

	out := make([]LineWithReceipt, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineWithReceipt{SaleLine: line, ReceiptNumber: receipts[line.TransactionID]})
	}
	return out, nil
}

type headerAggregate struct {
	Count    int64
	Items    int64
	Payments decimal.Decimal
}

type lineAggregate struct {
	Revenue decimal.Decimal
}

// moneyPlaces matches the NUMERIC(12,2) money columns. sqlite returns SUM over
// them as REAL, so aggregates are rounded back after scanning.
const moneyPlaces = 2

// Summary aggregates counts and money over the filtered transactions.
// Revenue is computed from captured line prices, not the current catalog.
func (r *Repository) Summary(ctx context.Context, filter Filter) (SalesSummary, error) {
	var headers headerAggregate
	err := applyFilter(r.DB(ctx).Model(&models.Transaction{}), filter).
		Select("COUNT(*) AS count, COALESCE(SUM(total_items), 0) AS items, COALESCE(SUM(total_payment), 0) AS payments").
		Scan(&headers).Error
	if err != nil {
		return SalesSummary{}, err
	}

	matching := applyFilter(r.DB(ctx).Model(&models.Transaction{}), filter).Select("id")
	var lines lineAggregate
	err = r.DB(ctx).
		Model(&models.SaleLine{}).
		Where("transactions_id IN (?)", matching).
		Select("COALESCE(SUM(quantity * price), 0) AS revenue").
		Scan(&lines).Error
	if err != nil {
		return SalesSummary{}, err
	}

	return SalesSummary{
		Transactions:      headers.Count,
		ItemsSold:         headers.Items,
		Revenue:           lines.Revenue.Round(moneyPlaces),
		PaymentsCollected: headers.Payments.Round(moneyPlaces),
	}, nil
}

func applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.UTC())
	}
	return query
}
