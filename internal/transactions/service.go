package transactions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/scanpos/scanpos-backend/pkg/db/models"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
)

// Service exposes read access to recorded sales.
type Service interface {
	ListTransactions(ctx context.Context, filter Filter) ([]TransactionDTO, error)
	GetTransaction(ctx context.Context, maskedID string) (*TransactionDTO, error)
	Summary(ctx context.Context, filter Filter) (*SummaryDTO, error)
}

type store interface {
	FindByID(ctx context.Context, id uint) (*models.Transaction, error)
	ListWithLines(ctx context.Context, filter Filter) ([]TransactionWithLines, error)
	ListLinesForTransaction(ctx context.Context, transactionID uint) ([]models.SaleLine, error)
	Summary(ctx context.Context, filter Filter) (SalesSummary, error)
}

type service struct {
	repo   store
	masker idmask.Masker
}

// NewService constructs the transaction read service.
func NewService(repo store, masker idmask.Masker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if masker == nil {
		return nil, fmt.Errorf("id masker required")
	}
	return &service{repo: repo, masker: masker}, nil
}

func (s *service) ListTransactions(ctx context.Context, filter Filter) ([]TransactionDTO, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListWithLines(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewTransactionDTO(s.masker, row.Transaction, row.Lines))
	}
	return out, nil
}

func (s *service) GetTransaction(ctx context.Context, maskedID string) (*TransactionDTO, error) {
	id, err := s.masker.Unmask(idmask.KindTransaction, maskedID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "transaction not found")
	}
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	lines, err := s.repo.ListLinesForTransaction(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale lines")
	}
	dto := NewTransactionDTO(s.masker, *tx, lines)
	return &dto, nil
}

func (s *service) Summary(ctx context.Context, filter Filter) (*SummaryDTO, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	sum, err := s.repo.Summary(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize transactions")
	}
	return &SummaryDTO{
		Transactions:      sum.Transactions,
		ItemsSold:         sum.ItemsSold,
		Revenue:           sum.Revenue,
		PaymentsCollected: sum.PaymentsCollected,
		From:              filter.From,
		To:                filter.To,
	}, nil
}

func validateFilter(filter Filter) error {
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	return nil
}
