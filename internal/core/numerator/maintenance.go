package numerator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockbook/pkg/logger"
)

// ImportResult reports the counter position after importing a legacy number.
type ImportResult struct {
	Period   string `json:"period"`
	Imported int64  `json:"imported"`
	Sequence int64  `json:"sequence"`
}

// Counters lists the counters of series for one tenant. The store must
// implement CounterReader.
func (a *Allocator) Counters(ctx context.Context, tenantID string, series Series) ([]Counter, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	key := Key{Series: series.Namespace(), TenantID: tenantID, Period: PeriodAll}
	if a == nil || a.store == nil {
		return nil, storageUnavailable(key, errors.New("allocator is not initialized"))
	}
	r, ok := a.store.(CounterReader)
	if !ok {
		return nil, notSupported("listing counters")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	counters, err := r.List(ctx, tenantID, key.Series)
	if err != nil {
		if errors.Is(err, ErrNotSupported) {
			return nil, notSupported("listing counters")
		}
		return nil, storageUnavailable(key, err)
	}
	return counters, nil
}

// Advance raises the (tenantID, period) counter of series to floor unless it
// is already higher, and returns the resulting value. The next allocation
// yields a number above it. Counters never decrease.
func (a *Allocator) Advance(ctx context.Context, tenantID string, series Series, period string, floor int64) (int64, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	if !series.Periodic() && period == "" {
		period = PeriodAll
	}
	if floor <= 0 || floor == math.MaxInt64 {
		return 0, invalidArgument("value", "must be a positive integer below the counter limit")
	}
	key := Key{Series: series.Namespace(), TenantID: tenantID, Period: period}
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	if a == nil || a.store == nil {
		return 0, storageUnavailable(key, errors.New("allocator is not initialized"))
	}
	adv, ok := a.store.(CounterAdvancer)
	if !ok {
		return 0, notSupported("advancing counters")
	}

	ctx, span := tracer.Start(ctx, "numerator.advance",
		trace.WithAttributes(
			attribute.String("numerator.series", key.Series),
			attribute.String("numerator.period", key.Period),
			attribute.Int64("numerator.floor", floor),
		))
	defer span.End()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	seq, err := adv.Advance(ctx, key, floor)
	if err == nil && seq < floor {
		err = fmt.Errorf("store advanced to %d, below floor %d", seq, floor)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "advance failed")
		if errors.Is(err, ErrNotSupported) {
			return 0, notSupported("advancing counters")
		}
		return 0, storageUnavailable(key, err)
	}

	logger.Info(ctx, "counter advanced", "series", key.Series, "period", key.Period, "floor", floor, "sequence", seq)
	return seq, nil
}

// Import parses a number issued by a previous numbering scheme and advances
// its period's counter so that allocation continues after it.
func (a *Allocator) Import(ctx context.Context, tenantID string, series Series, number string) (ImportResult, error) {
	if err := series.Validate(); err != nil {
		return ImportResult{}, err
	}
	period, seq, err := ParseNumber(number, series)
	if err != nil {
		return ImportResult{}, err
	}
	cur, err := a.Advance(ctx, tenantID, series, period, seq)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Period: period, Imported: seq, Sequence: cur}, nil
}
