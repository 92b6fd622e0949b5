package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/numerator"
	"stockbook/internal/core/tenant"
	"stockbook/internal/infrastructure/storage/memory"
)

func newTestService(t *testing.T, overrides map[string]numerator.Series) *Service {
	t.Helper()
	catalog, err := NewCatalog(overrides)
	require.NoError(t, err)
	svc := NewService(numerator.NewAllocator(memory.NewCounterStore(), nil), catalog)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func tenantCtx(id string) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Source: tenant.SourceStatic})
}

func TestService_NextDefaultSeries(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := tenantCtx("u1")

	tests := []struct {
		typ  Type
		want string
	}{
		{TypeInvoice, "INV-2025-0001"},
		{TypeInvoice, "INV-2025-0002"},
		{TypeSale, "SALE-2025-0001"},
		{TypePurchaseOrder, "PO-0001"},
		{TypeRefund, "RF-2025-0001"},
	}
	for _, tt := range tests {
		num, err := svc.Next(ctx, tt.typ, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, num.Value)
	}
}

func TestService_NextUsesDocumentDate(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := tenantCtx("u1")

	num, err := svc.Next(ctx, TypeInvoice, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-0001", num.Value)

	num, err = svc.Next(ctx, TypeInvoice, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0001", num.Value)
}

func TestService_TenantsAreIsolated(t *testing.T) {
	svc := newTestService(t, nil)

	a, err := svc.Next(tenantCtx("u1"), TypeSale, time.Time{})
	require.NoError(t, err)
	b, err := svc.Next(tenantCtx("u2"), TypeSale, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, a.Value, b.Value)
}

func TestService_Errors(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Next(tenantCtx("u1"), Type("quote"), time.Time{})
	assert.True(t, numerator.IsInvalidArgument(err))

	_, err = svc.Next(context.Background(), TypeInvoice, time.Time{})
	assert.True(t, numerator.IsInvalidArgument(err), "missing tenant")
}

func TestService_AdvanceImportCounters(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := tenantCtx("u1")

	res, err := svc.Import(ctx, TypePurchaseOrder, "PO-0412")
	require.NoError(t, err)
	assert.Equal(t, numerator.PeriodAll, res.Period)
	assert.Equal(t, int64(412), res.Sequence)

	num, err := svc.Next(ctx, TypePurchaseOrder, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "PO-0413", num.Value)

	seq, err := svc.Advance(ctx, TypeInvoice, "2025", 99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), seq)

	counters, err := svc.Counters(ctx, TypeInvoice)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.Equal(t, int64(99), counters[0].Sequence)
}

func TestNewCatalog_Overrides(t *testing.T) {
	catalog, err := NewCatalog(map[string]numerator.Series{
		"invoice":     {Prefix: "FV-", PadWidth: 6, Reset: numerator.ResetMonth},
		"credit_note": {Prefix: "CN-"},
	})
	require.NoError(t, err)

	inv, err := catalog.Lookup(TypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "FV-", inv.Prefix)

	cn, err := catalog.Lookup(Type("credit_note"))
	require.NoError(t, err)
	assert.Equal(t, numerator.DefaultPadWidth, cn.PadWidth)
	assert.Equal(t, numerator.ResetYear, cn.Reset)

	assert.Len(t, catalog.List(), 5)
	assert.Equal(t, Type("credit_note"), catalog.List()[0].Type)
}

func TestNewCatalog_Rejects(t *testing.T) {
	_, err := NewCatalog(map[string]numerator.Series{"refund": {Prefix: "INV-"}})
	assert.ErrorContains(t, err, "share series INV")

	_, err = NewCatalog(map[string]numerator.Series{"sale": {Prefix: "S A"}})
	assert.Error(t, err)
}
