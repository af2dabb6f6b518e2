package checkout

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
)

// Rejection carries one message per unfulfillable cart line. A rejected
// checkout leaves no trace: no transaction, no lines, no stock change.
type Rejection struct {
	err error
}

func (r *Rejection) add(format string, args ...any) {
	r.err = multierr.Append(r.err, fmt.Errorf(format, args...))
}

func (r *Rejection) empty() bool {
	return r == nil || r.err == nil
}

// Messages returns the per-line messages in cart order.
func (r *Rejection) Messages() []string {
	if r == nil {
		return nil
	}
	errs := multierr.Errors(r.err)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func (r *Rejection) Error() string {
	if r.empty() {
		return "checkout rejected"
	}
	return "checkout rejected: " + r.err.Error()
}

// AsRejection extracts a Rejection from err's chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

func (r *Rejection) apiError() *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, r, "checkout rejected").WithDetails(map[string]any{
		"items": r.Messages(),
	})
}

func notFoundMessage(r *Rejection, ref resolvedRef) {
	if ref.barcode != "" {
		r.add("Item not found (barcode: %s)", ref.barcode)
		return
	}
	r.add("Item not found")
}

func insufficientMessage(r *Rejection, name string, requested, available int) {
	if available < 0 {
		available = 0
	}
	r.add("Insufficient stock for %s (Requested: %d, Available: %d)", name, requested, available)
}
