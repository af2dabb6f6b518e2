package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/scanpos/scanpos-backend/api/responses"
	"github.com/scanpos/scanpos-backend/api/validators"
	"github.com/scanpos/scanpos-backend/internal/checkout"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ID       string `json:"id,omitempty"`
	Barcode  string `json:"barcode,omitempty"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	Items        []checkoutLineRequest `json:"items" validate:"required"`
	TotalPayment decimal.Decimal       `json:"total_payment"`
}

func (p checkoutRequest) toRequest() checkout.Request {
	lines := make([]checkout.LineRequest, 0, len(p.Items))
	for _, item := range p.Items {
		lines = append(lines, checkout.LineRequest{
			Ref:      checkout.ItemRef{Barcode: item.Barcode, ID: item.ID},
			Quantity: item.Quantity,
		})
	}
	return checkout.Request{Lines: lines, TotalPayment: p.TotalPayment}
}

// Checkout commits a cart and answers 201 with the receipt. Stock shortfalls
// come back as STATE_CONFLICT with one message per offending line.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), payload.toRequest())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
