package tenant

import (
	"context"
	"errors"
)

type ctxKey struct{}

// ErrNoTenantInContext is returned when a request reaches tenant-scoped code unresolved.
var ErrNoTenantInContext = errors.New("tenant not found in context")

// WithTenant stores tenant info in context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// GetTenant retrieves tenant from context.
func GetTenant(ctx context.Context) *Tenant {
	t, _ := ctx.Value(ctxKey{}).(*Tenant)
	return t
}

// GetTenantID returns tenant ID or empty string.
func GetTenantID(ctx context.Context) string {
	if t := GetTenant(ctx); t != nil {
		return t.ID
	}
	return ""
}

// RequireTenantID returns the tenant ID or ErrNoTenantInContext.
func RequireTenantID(ctx context.Context) (string, error) {
	if id := GetTenantID(ctx); id != "" {
		return id, nil
	}
	return "", ErrNoTenantInContext
}
