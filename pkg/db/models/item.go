package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a catalog product with its live stock count.
type Item struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stocks      int             `gorm:"column:stocks;not null;default:0;check:chk_items_stocks_non_negative,stocks >= 0"`
	Barcode     string          `gorm:"column:barcode;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (Item) TableName() string { return "items" }
