package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scanpos/scanpos-backend/internal/transactions"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
)

// BarcodeLookupDTO answers a scan. Name is null and the rest omitted when the
// barcode matches nothing.
type BarcodeLookupDTO struct {
	ID    string           `json:"id,omitempty"`
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// Found reports whether the lookup matched an item.
func (d BarcodeLookupDTO) Found() bool {
	return d.Name != nil
}

// ItemDTO is the back-office view of a catalog item.
type ItemDTO struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Stocks      int             `json:"stocks"`
	Barcode     string          `json:"barcode"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemSaleDTO is one historical sale of an item.
type ItemSaleDTO struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Sold          time.Time       `json:"sold"`
}

// ItemHistoryDTO is an item with its sales, newest first.
type ItemHistoryDTO struct {
	Item      ItemDTO       `json:"item"`
	UnitsSold int           `json:"units_sold"`
	Sales     []ItemSaleDTO `json:"sales"`
}

// NewItemDTO masks the item identifier.
func NewItemDTO(masker idmask.Masker, item models.Item) ItemDTO {
	return ItemDTO{
		ID:          masker.Mask(idmask.KindItem, item.ID),
		ProductName: item.ProductName,
		Price:       item.Price,
		Stocks:      item.Stocks,
		Barcode:     item.Barcode,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func newItemSaleDTO(masker idmask.Masker, line transactions.LineWithReceipt) ItemSaleDTO {
	return ItemSaleDTO{
		ID:            masker.Mask(idmask.KindSaleLine, line.ID),
		TransactionID: masker.Mask(idmask.KindTransaction, line.TransactionID),
		ReceiptNumber: line.ReceiptNumber,
		Quantity:      line.Quantity,
		Price:         line.Price,
		Subtotal:      line.Subtotal(),
		Sold:          line.Sold,
	}
}
