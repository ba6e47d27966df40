// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Operator identifies the authenticated person submitting receipts.
type Operator struct {
	OperatorID string
	Name       string
	Roles      []string
}

type operatorContextKey struct{}

// WithOperator adds Operator to context.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns Operator from context.
func GetOperator(ctx context.Context) *Operator {
	if v, ok := ctx.Value(operatorContextKey{}).(*Operator); ok {
		return v
	}
	return nil
}

// GetOperatorID returns operator ID from context or empty string.
func GetOperatorID(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.OperatorID
	}
	return ""
}

// HasRole checks if the operator has a specific role.
func HasRole(ctx context.Context, role string) bool {
	op := GetOperator(ctx)
	if op == nil {
		return false
	}
	for _, r := range op.Roles {
		if r == role {
			return true
		}
	}
	return false
}
