package controllers

import (
	"net/http"

	"github.com/scanpos/scanpos-backend/api/responses"
	"github.com/scanpos/scanpos-backend/api/validators"
	"github.com/scanpos/scanpos-backend/internal/catalog"
	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
	"github.com/scanpos/scanpos-backend/pkg/logger"
)

type scanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// ScanBarcode resolves a scanned code. An unknown code is a normal answer
// with a null name, not an error.
func ScanBarcode(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload scanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.LookupBarcode(r.Context(), payload.Barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
