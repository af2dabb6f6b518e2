package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction records one checkout. TotalItems is filled once every sale line is written.
type Transaction struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	ReceiptNumber string          `gorm:"column:receipt_number;not null;uniqueIndex"`
	TotalPayment  decimal.Decimal `gorm:"column:total_payment;type:numeric(12,2);not null"`
	TotalItems    int             `gorm:"column:total_items;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (Transaction) TableName() string { return "transactions" }
