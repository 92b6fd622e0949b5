package numerator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockbook/pkg/logger"
)

var tracer = otel.Tracer("stockbook/numerator")

// DefaultTimeout bounds one storage round trip.
const DefaultTimeout = 5 * time.Second

// Options configures an Allocator.
type Options struct {
	// Timeout bounds each storage round trip. Zero means DefaultTimeout,
	// negative disables the allocator's own deadline.
	Timeout time.Duration
}

// DefaultOptions returns standard options.
func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout}
}

// Allocator hands out document numbers. It is safe for concurrent use and
// keeps no state of its own: uniqueness is delegated to the store's atomic
// increment, so any number of processes may share one store.
type Allocator struct {
	store   AtomicCounterStore
	timeout time.Duration
}

// NewAllocator creates an allocator over store. opts may be nil.
func NewAllocator(store AtomicCounterStore, opts *Options) *Allocator {
	if opts == nil {
		opts = DefaultOptions()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Allocator{store: store, timeout: timeout}
}

// Store returns the underlying counter store.
func (a *Allocator) Store() AtomicCounterStore {
	return a.store
}

// Allocate returns the next number of the (tenantID, period) counter of the
// series named by prefix, formatted as "{prefix}{period}-{seq}" with seq
// zero-padded to padWidth digits (0 means DefaultPadWidth).
//
// Allocate(ctx, "u1", "2025", "INV-", 4) yields "INV-2025-0001" on a fresh
// counter, then "INV-2025-0002".
func (a *Allocator) Allocate(ctx context.Context, tenantID, period, prefix string, padWidth int) (DocumentNumber, error) {
	if err := validatePrefix(prefix); err != nil {
		return DocumentNumber{}, err
	}
	if err := validatePadWidth(padWidth); err != nil {
		return DocumentNumber{}, err
	}
	key := Key{Series: SeriesName(prefix), TenantID: tenantID, Period: period}
	return a.allocate(ctx, key, prefix, padWidth, true)
}

// Next allocates a number of series for a document dated at. The period
// is derived from the series' reset policy.
func (a *Allocator) Next(ctx context.Context, tenantID string, series Series, at time.Time) (DocumentNumber, error) {
	if err := series.Validate(); err != nil {
		return DocumentNumber{}, err
	}
	key := Key{Series: series.Namespace(), TenantID: tenantID, Period: series.PeriodKey(at)}
	return a.allocate(ctx, key, series.Prefix, series.PadWidth, series.Periodic())
}

func (a *Allocator) allocate(ctx context.Context, key Key, prefix string, padWidth int, withPeriod bool) (DocumentNumber, error) {
	if a == nil || a.store == nil {
		return DocumentNumber{}, storageUnavailable(key, errors.New("allocator is not initialized"))
	}
	if err := ValidateKey(key); err != nil {
		return DocumentNumber{}, err
	}

	ctx, span := tracer.Start(ctx, "numerator.allocate",
		trace.WithAttributes(
			attribute.String("numerator.series", key.Series),
			attribute.String("numerator.period", key.Period),
		))
	defer span.End()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	seq, err := a.store.FindOneAndIncrement(ctx, key)
	if err == nil && seq <= 0 {
		err = fmt.Errorf("store returned non-positive sequence %d", seq)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "increment failed")
		return DocumentNumber{}, storageUnavailable(key, err)
	}

	num := DocumentNumber{
		Value:    FormatNumber(prefix, key.Period, seq, padWidth, withPeriod),
		Series:   key.Series,
		Period:   key.Period,
		Sequence: seq,
	}
	span.SetAttributes(attribute.Int64("numerator.sequence", seq))
	logger.Debug(ctx, "document number allocated", "series", key.Series, "period", key.Period, "number", num.Value)

	return num, nil
}

func (a *Allocator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return ctx, func() {}
}
