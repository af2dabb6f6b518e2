package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scanpos/scanpos-backend/pkg/db/models"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
)

// TransactionDTO is the client view of a transaction and its lines.
type TransactionDTO struct {
	ID            string          `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	TotalItems    int             `json:"total_items"`
	LinesTotal    decimal.Decimal `json:"lines_total"`
	CreatedAt     time.Time       `json:"created_at"`
	Lines         []SaleLineDTO   `json:"lines"`
}

// SaleLineDTO is one sold item with its captured unit price.
type SaleLineDTO struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	Barcode  string          `json:"barcode"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Sold     time.Time       `json:"sold"`
}

// SummaryDTO is the dashboard aggregate.
type SummaryDTO struct {
	Transactions      int64           `json:"transactions"`
	ItemsSold         int64           `json:"items_sold"`
	Revenue           decimal.Decimal `json:"revenue"`
	PaymentsCollected decimal.Decimal `json:"payments_collected"`
	From              *time.Time      `json:"from,omitempty"`
	To                *time.Time      `json:"to,omitempty"`
}

// NewSaleLineDTO masks the line and item identifiers.
func NewSaleLineDTO(masker idmask.Masker, line models.SaleLine) SaleLineDTO {
	return SaleLineDTO{
		ID:       masker.Mask(idmask.KindSaleLine, line.ID),
		ItemID:   masker.Mask(idmask.KindItem, line.ItemID),
		Barcode:  line.Barcode,
		Quantity: line.Quantity,
		Price:    line.Price,
		Subtotal: line.Subtotal(),
		Sold:     line.Sold,
	}
}

// NewTransactionDTO masks identifiers and totals the captured line prices.
func NewTransactionDTO(masker idmask.Masker, tx models.Transaction, lines []models.SaleLine) TransactionDTO {
	dto := TransactionDTO{
		ID:            masker.Mask(idmask.KindTransaction, tx.ID),
		ReceiptNumber: tx.ReceiptNumber,
		TotalPayment:  tx.TotalPayment,
		TotalItems:    tx.TotalItems,
		LinesTotal:    decimal.Zero,
		CreatedAt:     tx.CreatedAt,
		Lines:         make([]SaleLineDTO, 0, len(lines)),
	}
	for _, line := range lines {
		lineDTO := NewSaleLineDTO(masker, line)
		dto.LinesTotal = dto.LinesTotal.Add(lineDTO.Subtotal)
		dto.Lines = append(dto.Lines, lineDTO)
	}
	return dto
}
