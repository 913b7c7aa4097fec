package middleware

import (
	"context"

	"github.com/parttrack/parttrack-backend/pkg/enums"
)

type contextKey string

const (
	ctxOperatorID   contextKey = "operator_id"
	ctxOperatorName contextKey = "operator_name"
	ctxRole         contextKey = "actor_role"
)

// OperatorIDFromContext returns the authenticated operator id, if any.
func OperatorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorID).(string); ok {
		return v
	}
	return ""
}

// OperatorNameFromContext returns the authenticated operator name, if any.
func OperatorNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorName).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated actor role, if any.
func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return enums.ActorRole(v)
	}
	return ""
}

// WithIdentity seeds the context with an authenticated identity.
func WithIdentity(ctx context.Context, operatorID, operatorName string, role enums.ActorRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxOperatorID, operatorID)
	ctx = context.WithValue(ctx, ctxOperatorName, operatorName)
	return context.WithValue(ctx, ctxRole, string(role))
}
