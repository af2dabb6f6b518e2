package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/scanpos/scanpos-backend/internal/transactions"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
)

// ItemRef names a catalog item either by barcode or by masked id, never both.
type ItemRef struct {
	Barcode string
	ID      string
}

// LineRequest is one cart line.
type LineRequest struct {
	Ref      ItemRef
	Quantity int
}

// Request is a submitted cart. TotalPayment is recorded as given.
type Request struct {
	Lines        []LineRequest
	TotalPayment decimal.Decimal
}

// Receipt is the committed transaction returned to the till.
type Receipt = transactions.TransactionDTO

type lineViolation struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func validateRequest(req Request) error {
	if len(req.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	if req.TotalPayment.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total payment must not be negative")
	}

	var violations []lineViolation
	for i, line := range req.Lines {
		barcode := strings.TrimSpace(line.Ref.Barcode)
		id := strings.TrimSpace(line.Ref.ID)
		switch {
		case barcode == "" && id == "":
			violations = append(violations, lineViolation{Line: i, Message: "item id or barcode is required"})
		case barcode != "" && id != "":
			violations = append(violations, lineViolation{Line: i, Message: "provide either item id or barcode, not both"})
		}
		if line.Quantity < 1 {
			violations = append(violations, lineViolation{Line: i, Message: "quantity must be at least 1"})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart lines").WithDetails(map[string]any{
		"lines": violations,
	})
}
