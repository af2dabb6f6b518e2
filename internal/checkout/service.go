package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scanpos/scanpos-backend/internal/catalog"
	"github.com/scanpos/scanpos-backend/internal/transactions"
	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/db/models"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
	"github.com/scanpos/scanpos-backend/pkg/logger"
	"github.com/scanpos/scanpos-backend/pkg/metrics"
	"github.com/scanpos/scanpos-backend/pkg/receipt"
)

const (
	receiptIndex       = "transactions_receipt_number_key"
	maxReceiptAttempts = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outcomeRecorder interface {
	Observe(outcome string, elapsed time.Duration)
	AddItemsSold(units int)
}

// Service executes checkouts.
type Service interface {
	Checkout(ctx context.Context, req Request) (*Receipt, error)
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Tx           txRunner
	Items        *catalog.Repository
	Transactions *transactions.Repository
	Masker       idmask.Masker
	Receipts     receipt.Generator
	Clock        receipt.Clock
	Metrics      outcomeRecorder
	Logger       *logger.Logger
}

type service struct {
	tx       txRunner
	items    *catalog.Repository
	sales    *transactions.Repository
	masker   idmask.Masker
	receipts receipt.Generator
	now      receipt.Clock
	metrics  outcomeRecorder
	logg     *logger.Logger
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Items == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if deps.Transactions == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if deps.Masker == nil {
		return nil, fmt.Errorf("id masker required")
	}
	if deps.Clock == nil {
		deps.Clock = receipt.SystemClock
	}
	if deps.Receipts == nil {
		deps.Receipts = receipt.NewGenerator(receipt.DefaultPrefix, deps.Clock)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCheckoutMetrics(nil)
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &service{
		tx:       deps.Tx,
		items:    deps.Items,
		sales:    deps.Transactions,
		masker:   deps.Masker,
		receipts: deps.Receipts,
		now:      deps.Clock,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
	}, nil
}

type resolvedRef struct {
	barcode  string
	itemID   uint
	quantity int
}

type plannedLine struct {
	item     models.Item
	quantity int
}

func (s *service) Checkout(ctx context.Context, req Request) (*Receipt, error) {
	start := time.Now()

	refs, err := s.resolveRefs(req)
	if err != nil {
		s.metrics.Observe(metrics.OutcomeRejected, time.Since(start))
		return nil, err
	}

	var out *Receipt
	for attempt := 1; attempt <= maxReceiptAttempts; attempt++ {
		out, err = s.attempt(ctx, refs, req.TotalPayment)
		if err == nil || !isReceiptCollision(err) {
			break
		}
		s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "checkout.receipt_collision")
	}

	if rej, ok := AsRejection(err); ok {
		s.metrics.Observe(metrics.OutcomeRejected, time.Since(start))
		ctx = s.logg.WithField(ctx, "reasons", rej.Messages())
		s.logg.Info(ctx, "checkout.rejected")
		return nil, rej.apiError()
	}
	if err != nil {
		s.metrics.Observe(metrics.OutcomeFailed, time.Since(start))
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout")
	}

	s.metrics.Observe(metrics.OutcomeCommitted, time.Since(start))
	s.metrics.AddItemsSold(out.TotalItems)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"receipt_number": out.ReceiptNumber,
		"total_items":    out.TotalItems,
	})
	s.logg.Info(ctx, "checkout.committed")
	return out, nil
}

// resolveRefs validates the request shape and unmasks item ids before any
// database work starts.
func (s *service) resolveRefs(req Request) ([]resolvedRef, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	refs := make([]resolvedRef, 0, len(req.Lines))
	for i, line := range req.Lines {
		ref := resolvedRef{
			barcode:  strings.TrimSpace(line.Ref.Barcode),
			quantity: line.Quantity,
		}
		if masked := strings.TrimSpace(line.Ref.ID); masked != "" {
			id, err := s.masker.Unmask(idmask.KindItem, masked)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id").
					WithDetails(map[string]any{"line": i})
			}
			ref.itemID = id
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *service) attempt(ctx context.Context, refs []resolvedRef, payment decimal.Decimal) (*Receipt, error) {
	var out *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		items := s.items.WithTx(tx)
		sales := s.sales.WithTx(tx)

		plan, err := s.plan(ctx, items, refs)
		if err != nil {
			return err
		}
		out, err = s.commit(ctx, items, sales, plan, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// plan resolves every line and checks it against the stock left after the
// earlier lines of the same cart claimed their share.
func (s *service) plan(ctx context.Context, items *catalog.Repository, refs []resolvedRef) ([]plannedLine, error) {
	rejection := &Rejection{}
	claimed := make(map[uint]int, len(refs))
	plan := make([]plannedLine, 0, len(refs))

	for _, ref := range refs {
		item, err := findItem(ctx, items, ref)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFoundMessage(rejection, ref)
			continue
		}
		if err != nil {
			return nil, err
		}

		available := item.Stocks - claimed[item.ID]
		if ref.quantity > available {
			insufficientMessage(rejection, item.ProductName, ref.quantity, available)
			continue
		}
		claimed[item.ID] += ref.quantity
		plan = append(plan, plannedLine{item: *item, quantity: ref.quantity})
	}

	if !rejection.empty() {
		return nil, rejection
	}
	return plan, nil
}

func (s *service) commit(ctx context.Context, items *catalog.Repository, sales *transactions.Repository, plan []plannedLine, payment decimal.Decimal) (*Receipt, error) {
	record, err := sales.CreateTransaction(ctx, s.receipts.Next(), payment)
	if err != nil {
		return nil, err
	}

	sold := s.now()
	lines := make([]models.SaleLine, 0, len(plan))
	totalItems := 0
	for _, line := range plan {
		if err := items.DecrementStock(ctx, line.item.ID, line.quantity); err != nil {
			if errors.Is(err, catalog.ErrInsufficientStock) {
				return nil, s.lostRace(ctx, items, line)
			}
			return nil, err
		}

		saved, err := sales.AddSaleLine(ctx, transactions.SaleLineInput{
			TransactionID: record.ID,
			ItemID:        line.item.ID,
			Barcode:       line.item.Barcode,
			Quantity:      line.quantity,
			Price:         line.item.Price,
			Sold:          sold,
		})
		if err != nil {
			return nil, err
		}
		lines = append(lines, *saved)
		totalItems += line.quantity
	}

	if err := sales.FinalizeTotals(ctx, record.ID, totalItems); err != nil {
		return nil, err
	}
	record.TotalItems = totalItems

	receiptDTO := transactions.NewTransactionDTO(s.masker, *record, lines)
	return &receiptDTO, nil
}

// lostRace builds the rejection for a line whose guarded decrement matched
// nothing because a concurrent checkout took the stock after planning.
func (s *service) lostRace(ctx context.Context, items *catalog.Repository, line plannedLine) error {
	rejection := &Rejection{}
	current, err := items.FindByID(ctx, line.item.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		notFoundMessage(rejection, resolvedRef{barcode: line.item.Barcode})
	case err != nil:
		return err
	default:
		insufficientMessage(rejection, current.ProductName, line.quantity, current.Stocks)
	}
	return rejection
}

func findItem(ctx context.Context, items *catalog.Repository, ref resolvedRef) (*models.Item, error) {
	if ref.itemID != 0 {
		return items.FindByID(ctx, ref.itemID)
	}
	return items.FindByBarcode(ctx, ref.barcode)
}

func isReceiptCollision(err error) bool {
	return db.IsUniqueViolation(err, receiptIndex) || db.IsUniqueViolation(err, "transactions.receipt_number")
}
