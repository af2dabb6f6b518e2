package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/scanpos/scanpos-backend/internal/repo"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
)

// ErrInsufficientStock is returned by DecrementStock when the guarded update
// matched no row: the item is gone or holds fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository persists catalog items.
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

// FindByBarcode loads the live item whose barcode matches code exactly.
func (r *Repository) FindByBarcode(ctx context.Context, code string) (*models.Item, error) {
	var item models.Item
	err := r.DB(ctx).
		Where("barcode = ?", code).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByID loads a live item by primary key.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DecrementStock removes qty units in a single guarded statement. It never
// reads the row first, so concurrent callers cannot drive stock below zero.
func (r *Repository) DecrementStock(ctx context.Context, id uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	res := r.DB(ctx).
		Model(&models.Item{}).
		Where("id = ? AND stocks >= ?", id, qty).
		Update("stocks", gorm.Expr("stocks - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Create inserts a new item.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item == nil {
		return nil, fmt.Errorf("item is required")
	}
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the editable fields of an existing item.
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item == nil || item.ID == 0 {
		return nil, fmt.Errorf("item with id is required")
	}
	res := r.DB(ctx).
		Model(&models.Item{ID: item.ID}).
		Select("product_name", "price", "stocks", "barcode").
		Updates(map[string]any{
			"product_name": item.ProductName,
			"price":        item.Price,
			"stocks":       item.Stocks,
			"barcode":      item.Barcode,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, item.ID)
}

// Delete soft-deletes the item; its sale lines stay intact.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.DB(ctx).Delete(&models.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns every live item ordered by product name.
func (r *Repository) List(ctx context.Context, search string) ([]models.Item, error) {
	query := r.DB(ctx).Model(&models.Item{})
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(product_name) LIKE ? OR barcode = ?", like, term)
	}

	var items []models.Item
	if err := query.Order("product_name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
