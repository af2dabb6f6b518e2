package middleware

import "context"

type contextKey string

const (
	ctxOperatorID   contextKey = "operator_id"
	ctxOperatorName contextKey = "operator_name"
)

// OperatorIDFromContext returns the authenticated back-office operator, if any.
func OperatorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorID).(string); ok {
		return v
	}
	return ""
}

func OperatorNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorName).(string); ok {
		return v
	}
	return ""
}

// WithOperator injects the operator identity into the context.
func WithOperator(ctx context.Context, id, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxOperatorID, id)
	return context.WithValue(ctx, ctxOperatorName, name)
}
