package middleware

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/tenant"
)

const (
	// TenantHeader is the HTTP header for tenant identification.
	TenantHeader = "X-Tenant-ID"
)

// Tenant middleware resolves the tenant every counter of the request is
// scoped to. The token's tid claim wins; the X-Tenant-ID header is used
// when there is no claim and must agree with it when both are present.
// Must run after Auth.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		header := c.GetHeader(TenantHeader)

		t := &tenant.Tenant{ID: header, Source: tenant.SourceHeader}
		if user := appctx.GetUser(ctx); user != nil && user.TenantID != "" {
			if header != "" && header != user.TenantID {
				_ = c.Error(
					apperror.NewForbidden("tenant mismatch").
						WithDetail("header_tenant_id", header).
						WithDetail("token_tenant_id", user.TenantID),
				)
				c.Abort()
				return
			}
			t = &tenant.Tenant{ID: user.TenantID, Source: tenant.SourceToken}
		}

		if t.ID == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}
		if err := tenant.ValidateID(t.ID); err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid tenant id").
					WithDetail("header", TenantHeader).
					WithCause(err),
			)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(tenant.WithTenant(ctx, t))
		c.Set("tenant_id", t.ID)

		c.Next()
	}
}
