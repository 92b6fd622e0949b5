package numerator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	corenumerator "stockbook/internal/core/numerator"
	"stockbook/internal/infrastructure/config"
	"stockbook/internal/infrastructure/metrics"
	"stockbook/internal/infrastructure/storage/memory"
	"stockbook/internal/infrastructure/storage/sqlite"
	"stockbook/pkg/logger"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := Open(ctx, config.StorageConfig{Driver: config.DriverMemory}, logger.Nop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &memory.CounterStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "counters.db")
		store, err := Open(ctx, config.StorageConfig{
			Driver: config.DriverSQLite,
			SQLite: config.SQLiteConfig{Path: path},
		}, logger.Nop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &sqlite.Store{}, store)

		seq, err := store.FindOneAndIncrement(ctx, corenumerator.Key{Series: "INV", TenantID: "u1", Period: "2025"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, config.StorageConfig{Driver: "etcd"}, logger.Nop())
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestInstrumentedStore_RecordsAllocations(t *testing.T) {
	m := metrics.New()
	fail := false
	inner := &corenumerator.MockStore{
		FindOneAndIncrementFunc: func(context.Context, corenumerator.Key) (int64, error) {
			if fail {
				return 0, errors.New("connection reset")
			}
			return 7, nil
		},
	}
	s := NewInstrumented(inner, m, logger.Nop())
	key := corenumerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	seq, err := s.FindOneAndIncrement(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)

	fail = true
	_, err = s.FindOneAndIncrement(context.Background(), key)
	require.Error(t, err)

	// One series for each outcome.
	n, err := testutil.GatherAndCount(m.Registry(), "stockbook_numerator_allocations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInstrumentedStore_MissingCapabilities(t *testing.T) {
	s := NewInstrumented(&corenumerator.MockStore{}, nil, logger.Nop())
	ctx := context.Background()
	key := corenumerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	_, _, err := s.Current(ctx, key)
	assert.ErrorIs(t, err, corenumerator.ErrNotSupported)

	_, err = s.List(ctx, "u1", "INV")
	assert.ErrorIs(t, err, corenumerator.ErrNotSupported)

	_, err = s.Advance(ctx, key, 10)
	assert.ErrorIs(t, err, corenumerator.ErrNotSupported)

	assert.NoError(t, s.Ping(ctx))
}

func TestInstrumentedStore_ForwardsCapabilities(t *testing.T) {
	m := metrics.New()
	s := NewInstrumented(memory.NewCounterStore(), m, logger.Nop())
	ctx := context.Background()
	key := corenumerator.Key{Series: "PO", TenantID: "u1", Period: corenumerator.PeriodAll}

	seq, err := s.Advance(ctx, key, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(120), seq)

	seq, found, err := s.Current(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(120), seq)

	counters, err := s.List(ctx, "u1", "PO")
	require.NoError(t, err)
	assert.Len(t, counters, 1)

	n, err := testutil.GatherAndCount(m.Registry(), "stockbook_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Same(t, s.Unwrap(), s.inner)
}

func TestInstrumentedStore_AdvanceLogsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	ctx := logger.WithLogger(context.Background(), log)

	s := NewInstrumented(memory.NewCounterStore(), metrics.New(), log)
	a := corenumerator.NewAllocator(s, nil)

	seq, err := a.Advance(ctx, "u1", corenumerator.NewSeries("INV-"), "2025", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), seq)

	assert.Equal(t, 1, logs.FilterMessage("counter advanced").Len())
}
