package documents

import (
	"context"
	"time"

	"stockbook/internal/core/numerator"
	"stockbook/internal/core/tenant"
)

// Service allocates and maintains document numbers for the tenant in context.
type Service struct {
	allocator *numerator.Allocator
	catalog   *Catalog
	now       func() time.Time
}

// NewService creates a numbering service.
func NewService(allocator *numerator.Allocator, catalog *Catalog) *Service {
	return &Service{
		allocator: allocator,
		catalog:   catalog,
		now:       time.Now,
	}
}

// Series returns the configured numbering of every document type.
func (s *Service) Series() []SeriesInfo {
	return s.catalog.List()
}

// Next allocates the number of a document of type t dated at. A zero at
// means now, in UTC.
func (s *Service) Next(ctx context.Context, t Type, at time.Time) (numerator.DocumentNumber, error) {
	series, err := s.catalog.Lookup(t)
	if err != nil {
		return numerator.DocumentNumber{}, err
	}
	if at.IsZero() {
		at = s.now().UTC()
	}
	return s.allocator.Next(ctx, tenant.GetTenantID(ctx), series, at)
}

// Counters lists the counters of type t for the tenant in context.
func (s *Service) Counters(ctx context.Context, t Type) ([]numerator.Counter, error) {
	series, err := s.catalog.Lookup(t)
	if err != nil {
		return nil, err
	}
	return s.allocator.Counters(ctx, tenant.GetTenantID(ctx), series)
}

// Advance raises the counter of type t in period to at least value.
func (s *Service) Advance(ctx context.Context, t Type, period string, value int64) (int64, error) {
	series, err := s.catalog.Lookup(t)
	if err != nil {
		return 0, err
	}
	return s.allocator.Advance(ctx, tenant.GetTenantID(ctx), series, period, value)
}

// Import continues numbering of type t after a legacy number.
func (s *Service) Import(ctx context.Context, t Type, number string) (numerator.ImportResult, error) {
	series, err := s.catalog.Lookup(t)
	if err != nil {
		return numerator.ImportResult{}, err
	}
	return s.allocator.Import(ctx, tenant.GetTenantID(ctx), series, number)
}
