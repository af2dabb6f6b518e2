package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the connection shared by the catalog and transaction stores.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base backed by the provided GORM connection or transaction.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx when one is supplied.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
