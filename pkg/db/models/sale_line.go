package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleLine is one item/quantity entry of a transaction. Price is the item price
// captured at the moment of sale and never re-read from the catalog.
type SaleLine struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID uint            `gorm:"column:transactions_id;not null;index"`
	ItemID        uint            `gorm:"column:items_id;not null;index"`
	Barcode       string          `gorm:"column:barcode;not null"`
	Quantity      int             `gorm:"column:quantity;not null;check:chk_sales_inventory_quantity_positive,quantity > 0"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Sold          time.Time       `gorm:"column:sold;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (SaleLine) TableName() string { return "sales_inventory" }

// Subtotal is quantity times the captured unit price.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
