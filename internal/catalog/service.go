package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scanpos/scanpos-backend/internal/transactions"
	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
)

const barcodeIndex = "items_barcode_live_key"

// Service exposes barcode lookup and catalog management.
type Service interface {
	LookupBarcode(ctx context.Context, code string) (*BarcodeLookupDTO, error)
	ListItems(ctx context.Context, search string) ([]ItemDTO, error)
	GetItem(ctx context.Context, maskedID string) (*ItemDTO, error)
	CreateItem(ctx context.Context, input ItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, maskedID string, input ItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, maskedID string) error
	ItemHistory(ctx context.Context, maskedID string) (*ItemHistoryDTO, error)
}

// ItemInput holds the editable fields of an item. Update replaces all of them.
type ItemInput struct {
	ProductName string
	Price       decimal.Decimal
	Stocks      int
	Barcode     string
}

func (in ItemInput) normalize() (ItemInput, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Barcode = strings.TrimSpace(in.Barcode)
	switch {
	case in.ProductName == "":
		return in, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	case in.Barcode == "":
		return in, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	case in.Price.IsNegative():
		return in, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	case in.Stocks < 0:
		return in, pkgerrors.New(pkgerrors.CodeValidation, "stocks must not be negative")
	}
	in.Price = in.Price.Round(2)
	return in, nil
}

type itemStore interface {
	FindByBarcode(ctx context.Context, code string) (*models.Item, error)
	FindByID(ctx context.Context, id uint) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, search string) ([]models.Item, error)
}

type saleHistoryReader interface {
	ListLinesForItem(ctx context.Context, itemID uint) ([]transactions.LineWithReceipt, error)
}

type service struct {
	repo    itemStore
	history saleHistoryReader
	masker  idmask.Masker
}

// NewService constructs the catalog service.
func NewService(repo itemStore, history saleHistoryReader, masker idmask.Masker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if history == nil {
		return nil, fmt.Errorf("sale history reader required")
	}
	if masker == nil {
		return nil, fmt.Errorf("id masker required")
	}
	return &service{repo: repo, history: history, masker: masker}, nil
}

// LookupBarcode never reports a missing barcode as an error; the scanner
// shows "not found" from the null name instead.
func (s *service) LookupBarcode(ctx context.Context, code string) (*BarcodeLookupDTO, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	item, err := s.repo.FindByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BarcodeLookupDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup barcode")
	}
	name := item.ProductName
	price := item.Price
	return &BarcodeLookupDTO{
		ID:    s.masker.Mask(idmask.KindItem, item.ID),
		Name:  &name,
		Price: &price,
	}, nil
}

func (s *service) ListItems(ctx context.Context, search string) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemDTO(s.masker, item))
	}
	return out, nil
}

func (s *service) GetItem(ctx context.Context, maskedID string) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, maskedID)
	if err != nil {
		return nil, err
	}
	dto := NewItemDTO(s.masker, *item)
	return &dto, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*ItemDTO, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureBarcodeFree(ctx, input.Barcode, 0); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Item{
		ProductName: input.ProductName,
		Price:       input.Price,
		Stocks:      input.Stocks,
		Barcode:     input.Barcode,
	})
	if err != nil {
		return nil, mapWriteError(err, "create item")
	}
	dto := NewItemDTO(s.masker, *created)
	return &dto, nil
}

func (s *service) UpdateItem(ctx context.Context, maskedID string, input ItemInput) (*ItemDTO, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	existing, err := s.loadItem(ctx, maskedID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureBarcodeFree(ctx, input.Barcode, existing.ID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &models.Item{
		ID:          existing.ID,
		ProductName: input.ProductName,
		Price:       input.Price,
		Stocks:      input.Stocks,
		Barcode:     input.Barcode,
	})
	if err != nil {
		return nil, mapWriteError(err, "update item")
	}
	dto := NewItemDTO(s.masker, *updated)
	return &dto, nil
}

func (s *service) DeleteItem(ctx context.Context, maskedID string) error {
	id, err := s.unmask(maskedID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapWriteError(err, "delete item")
	}
	return nil
}

func (s *service) ItemHistory(ctx context.Context, maskedID string) (*ItemHistoryDTO, error) {
	item, err := s.loadItem(ctx, maskedID)
	if err != nil {
		return nil, err
	}
	lines, err := s.history.ListLinesForItem(ctx, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item history")
	}

	out := &ItemHistoryDTO{
		Item:  NewItemDTO(s.masker, *item),
		Sales: make([]ItemSaleDTO, 0, len(lines)),
	}
	for _, line := range lines {
		out.UnitsSold += line.Quantity
		out.Sales = append(out.Sales, newItemSaleDTO(s.masker, line))
	}
	return out, nil
}

func (s *service) unmask(maskedID string) (uint, error) {
	id, err := s.masker.Unmask(idmask.KindItem, strings.TrimSpace(maskedID))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
	}
	return id, nil
}

func (s *service) loadItem(ctx context.Context, maskedID string) (*models.Item, error) {
	id, err := s.unmask(maskedID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) ensureBarcodeFree(ctx context.Context, barcode string, selfID uint) error {
	existing, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check barcode")
	}
	if existing.ID == selfID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "barcode already assigned to another item").
		WithDetails(map[string]any{"barcode": barcode})
}

func mapWriteError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	case db.IsUniqueViolation(err, barcodeIndex), db.IsUniqueViolation(err, "items.barcode"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "barcode already assigned to another item")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}
