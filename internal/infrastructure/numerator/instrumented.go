package numerator

import (
	"context"
	"time"

	corenumerator "stockbook/internal/core/numerator"
	"stockbook/internal/infrastructure/metrics"
	"stockbook/pkg/logger"
)

// InstrumentedStore records metrics for every store call and logs failures.
// It exposes every optional capability; calls the wrapped store lacks
// return corenumerator.ErrNotSupported.
type InstrumentedStore struct {
	inner   corenumerator.AtomicCounterStore
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

var (
	_ corenumerator.AtomicCounterStore = (*InstrumentedStore)(nil)
	_ corenumerator.CounterReader      = (*InstrumentedStore)(nil)
	_ corenumerator.CounterAdvancer    = (*InstrumentedStore)(nil)
	_ corenumerator.Pinger             = (*InstrumentedStore)(nil)
)

// NewInstrumented wraps inner. m may be nil to disable metrics.
func NewInstrumented(inner corenumerator.AtomicCounterStore, m *metrics.Metrics, log *logger.Logger) *InstrumentedStore {
	if log == nil {
		log = logger.Default()
	}
	return &InstrumentedStore{
		inner:   inner,
		metrics: m,
		log:     log.WithComponent("counter_store"),
		now:     time.Now,
	}
}

// Unwrap returns the decorated store.
func (s *InstrumentedStore) Unwrap() corenumerator.AtomicCounterStore {
	return s.inner
}

// FindOneAndIncrement implements corenumerator.AtomicCounterStore.
func (s *InstrumentedStore) FindOneAndIncrement(ctx context.Context, key corenumerator.Key) (int64, error) {
	start := s.now()
	seq, err := s.inner.FindOneAndIncrement(ctx, key)
	if s.metrics != nil {
		s.metrics.ObserveAllocation(key.Series, s.now().Sub(start), err)
	}
	if err != nil {
		s.log.WithContext(ctx).Warnw("counter increment failed",
			"series", key.Series, "period", key.Period, "error", err)
	}
	return seq, err
}

// Current implements corenumerator.CounterReader.
func (s *InstrumentedStore) Current(ctx context.Context, key corenumerator.Key) (int64, bool, error) {
	r, ok := s.inner.(corenumerator.CounterReader)
	if !ok {
		return 0, false, corenumerator.ErrNotSupported
	}
	seq, found, err := r.Current(ctx, key)
	s.observe(ctx, "current", err)
	return seq, found, err
}

// List implements corenumerator.CounterReader.
func (s *InstrumentedStore) List(ctx context.Context, tenantID, series string) ([]corenumerator.Counter, error) {
	r, ok := s.inner.(corenumerator.CounterReader)
	if !ok {
		return nil, corenumerator.ErrNotSupported
	}
	counters, err := r.List(ctx, tenantID, series)
	s.observe(ctx, "list", err)
	return counters, err
}

// Advance implements corenumerator.CounterAdvancer.
func (s *InstrumentedStore) Advance(ctx context.Context, key corenumerator.Key, floor int64) (int64, error) {
	a, ok := s.inner.(corenumerator.CounterAdvancer)
	if !ok {
		return 0, corenumerator.ErrNotSupported
	}
	seq, err := a.Advance(ctx, key, floor)
	s.observe(ctx, "advance", err)
	return seq, err
}

// Ping implements corenumerator.Pinger. Stores without a ping are assumed up.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(corenumerator.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *InstrumentedStore) observe(ctx context.Context, op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOp(op, err)
	}
	if err != nil {
		s.log.WithContext(ctx).Warnw("counter store operation failed", "operation", op, "error", err)
	}
}
