package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/tenant"
	"stockbook/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRecovery_RendersInternalError(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("kaput") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rec.Body.String(), "kaput")
}

func TestErrorHandler_LogLevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
	}, ErrorHandler())
	r.GET("/bad", func(c *gin.Context) {
		_ = c.Error(apperror.NewInvalidArgument("prefix too long").WithCause(errors.New("invalid argument")))
	})
	r.GET("/down", func(c *gin.Context) {
		_ = c.Error(apperror.NewStorageUnavailable(errors.New("connection refused")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestTrace_PropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = appctx.GetRequestID(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, rec.Header().Get(HeaderTraceID))
}

func TestTenant_Resolution(t *testing.T) {
	withUser := func(tenantID string) gin.HandlerFunc {
		return func(c *gin.Context) {
			ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{UserID: "x", TenantID: tenantID})
			c.Request = c.Request.WithContext(ctx)
		}
	}

	tests := []struct {
		name       string
		userTenant string
		header     string
		status     int
		want       string
		source     tenant.Source
	}{
		{name: "header only", header: "acme", status: http.StatusOK, want: "acme", source: tenant.SourceHeader},
		{name: "claim only", userTenant: "acme", status: http.StatusOK, want: "acme", source: tenant.SourceToken},
		{name: "claim and matching header", userTenant: "acme", header: "acme", status: http.StatusOK, want: "acme", source: tenant.SourceToken},
		{name: "mismatch", userTenant: "acme", header: "other", status: http.StatusForbidden},
		{name: "none", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			if tt.userTenant != "" {
				r.Use(withUser(tt.userTenant))
			}
			r.Use(Tenant())

			var got *tenant.Tenant
			r.GET("/", func(c *gin.Context) {
				got = tenant.GetTenant(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, tt.want, got.ID)
				assert.Equal(t, tt.source, got.Source)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	run := func(authEnabled bool, user *appctx.UserContext) int {
		r := gin.New()
		r.Use(ErrorHandler())
		r.Use(func(c *gin.Context) {
			if user != nil {
				c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
			}
		})
		r.GET("/", RequireRole(authEnabled, "numbering_admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, run(false, nil))
	assert.Equal(t, http.StatusUnauthorized, run(true, nil))
	assert.Equal(t, http.StatusForbidden, run(true, &appctx.UserContext{UserID: "u"}))
	assert.Equal(t, http.StatusNoContent, run(true, &appctx.UserContext{UserID: "u", Roles: []string{"numbering_admin"}}))
	assert.Equal(t, http.StatusNoContent, run(true, &appctx.UserContext{UserID: "u", IsAdmin: true}))
}
