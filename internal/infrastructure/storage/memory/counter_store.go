// Package memory provides a process-local counter store.
//
// It is not durable and must not back production numbering: counters are
// lost on restart. It exists for tests and local development.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"stockbook/internal/core/numerator"
)

// CounterStore keeps counters in a mutex-guarded map.
type CounterStore struct {
	mu       sync.Mutex
	counters map[numerator.Key]*numerator.Counter
	now      func() time.Time
}

var (
	_ numerator.AtomicCounterStore = (*CounterStore)(nil)
	_ numerator.CounterReader      = (*CounterStore)(nil)
	_ numerator.CounterAdvancer    = (*CounterStore)(nil)
)

// NewCounterStore creates an empty store.
func NewCounterStore() *CounterStore {
	return &CounterStore{
		counters: make(map[numerator.Key]*numerator.Counter),
		now:      time.Now,
	}
}

// FindOneAndIncrement implements numerator.AtomicCounterStore.
func (s *CounterStore) FindOneAndIncrement(ctx context.Context, key numerator.Key) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreate(key)
	if c.Sequence == math.MaxInt64 {
		return 0, fmt.Errorf("increment %s: %w", key, numerator.ErrCounterExhausted)
	}
	c.Sequence++
	c.UpdatedAt = s.now()
	return c.Sequence, nil
}

// Current implements numerator.CounterReader.
func (s *CounterStore) Current(_ context.Context, key numerator.Key) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok {
		return 0, false, nil
	}
	return c.Sequence, true, nil
}

// List implements numerator.CounterReader.
func (s *CounterStore) List(_ context.Context, tenantID, series string) ([]numerator.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]numerator.Counter, 0)
	for k, c := range s.counters {
		if k.TenantID == tenantID && k.Series == series {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// Advance implements numerator.CounterAdvancer.
func (s *CounterStore) Advance(ctx context.Context, key numerator.Key, floor int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("advance %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreate(key)
	if floor > c.Sequence {
		c.Sequence = floor
		c.UpdatedAt = s.now()
	}
	return c.Sequence, nil
}

// Ping implements numerator.Pinger.
func (s *CounterStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *CounterStore) Close() error {
	return nil
}

// getOrCreate must be called with mu held.
func (s *CounterStore) getOrCreate(key numerator.Key) *numerator.Counter {
	c, ok := s.counters[key]
	if !ok {
		c = &numerator.Counter{
			Series:   key.Series,
			TenantID: key.TenantID,
			Period:   key.Period,
		}
		s.counters[key] = c
	}
	return c
}
