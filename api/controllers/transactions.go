package controllers

import (
	"net/http"

	"github.com/scanpos/scanpos-backend/api/responses"
	"github.com/scanpos/scanpos-backend/api/validators"
	"github.com/scanpos/scanpos-backend/internal/transactions"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/logger"
)

// ListTransactions returns transactions newest first, each with its lines.
// Optional from/to bound created_at as a half-open range.
func ListTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		filter, err := transactionFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListTransactions(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		transactionID, err := requiredParam(r, "transactionId", "transaction id is required")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tx, err := svc.GetTransaction(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tx)
	}
}

func SalesSummary(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		filter, err := transactionFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func transactionFilter(r *http.Request) (transactions.Filter, error) {
	from, to, err := validators.ParseTimeRange(r)
	if err != nil {
		return transactions.Filter{}, err
	}
	return transactions.Filter{From: from, To: to}, nil
}
