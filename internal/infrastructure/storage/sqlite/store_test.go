package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/numerator"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counters.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStore_FindOneAndIncrement(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	key := numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	for want := int64(1); want <= 3; want++ {
		got, err := store.FindOneAndIncrement(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other := numerator.Key{Series: "INV", TenantID: "u1", Period: "2026"}
	got, err := store.FindOneAndIncrement(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestStore_ConcurrentAllocation(t *testing.T) {
	store, _ := openTestStore(t)
	a := numerator.NewAllocator(store, nil)
	ctx := context.Background()

	const n = 100
	seqs := make([]int64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			num, err := a.Allocate(ctx, "u1", "2025", "INV-", 4)
			seqs[i], errs[i] = num.Sequence, err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, s := range seqs {
		require.Equal(t, int64(i+1), s, "sequence set must be exactly 1..%d", n)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.db")
	ctx := context.Background()
	key := numerator.Key{Series: "SALE", TenantID: "u1", Period: "2025"}

	store, err := Open(ctx, path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := store.FindOneAndIncrement(ctx, key)
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.FindOneAndIncrement(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
}

func TestStore_AdvanceNeverDecreases(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	key := numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	got, err := store.Advance(ctx, key, 41)
	require.NoError(t, err)
	assert.Equal(t, int64(41), got)

	got, err = store.Advance(ctx, key, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(41), got)

	got, err = store.FindOneAndIncrement(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestStore_ExhaustedCounterIsUnchanged(t *testing.T) {
	store, _ := openTestStore(t)
	a := numerator.NewAllocator(store, nil)
	ctx := context.Background()
	key := numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	_, err := store.Advance(ctx, key, math.MaxInt64-1)
	require.NoError(t, err)

	num, err := a.Allocate(ctx, "u1", "2025", "INV-", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), num.Sequence)

	for i := 0; i < 2; i++ {
		_, err = store.FindOneAndIncrement(ctx, key)
		require.ErrorIs(t, err, numerator.ErrCounterExhausted)

		_, err = a.Allocate(ctx, "u1", "2025", "INV-", 4)
		assert.True(t, numerator.IsStorageUnavailable(err))
	}

	var kind string
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT typeof(sequence) FROM sequence_counters WHERE series = ? AND tenant_id = ? AND period = ?",
		key.Series, key.TenantID, key.Period).Scan(&kind))
	assert.Equal(t, "integer", kind)

	value, found, err := store.Current(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(math.MaxInt64), value)
}

func TestStore_CurrentAndList(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, found, err := store.Current(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"})
	require.NoError(t, err)
	assert.False(t, found)

	for _, period := range []string{"2026", "2025", "2025"} {
		_, err := store.FindOneAndIncrement(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: period})
		require.NoError(t, err)
	}
	_, err = store.FindOneAndIncrement(ctx, numerator.Key{Series: "INV", TenantID: "u2", Period: "2025"})
	require.NoError(t, err)

	value, found, err := store.Current(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), value)

	counters, err := store.List(ctx, "u1", "INV")
	require.NoError(t, err)
	require.Len(t, counters, 2)
	assert.Equal(t, "2025", counters[0].Period)
	assert.Equal(t, int64(2), counters[0].Sequence)
	assert.Equal(t, "2026", counters[1].Period)
	assert.False(t, counters[1].UpdatedAt.IsZero())
}

func TestStore_QueryErrorIsReturned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO sequence_counters").WillReturnError(errors.New("disk I/O error"))

	store := NewWithDB(db)
	_, err = store.FindOneAndIncrement(context.Background(), numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AllocatorMapsQueryErrorToStorageUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO sequence_counters").
		WillReturnRows(sqlmock.NewRows([]string{"sequence"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO sequence_counters").WillReturnError(errors.New("database is locked"))

	a := numerator.NewAllocator(NewWithDB(db), nil)
	ctx := context.Background()

	num, err := a.Allocate(ctx, "u1", "2025", "INV-", 4)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0007", num.Value)

	_, err = a.Allocate(ctx, "u1", "2025", "INV-", 4)
	require.Error(t, err)
	assert.True(t, numerator.IsStorageUnavailable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
