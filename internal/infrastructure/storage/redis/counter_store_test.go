package redis

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/numerator"
)

func TestHashKey(t *testing.T) {
	s := NewWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	defer s.Close()

	assert.Equal(t, "stockbook:seq:INV:u1", s.hashKey("INV", "u1"))
	assert.Equal(t, "stockbook:seq:INV:u1:eu", s.hashKey("INV", "u1:eu"))
}

func TestCounterStore_Unreachable(t *testing.T) {
	// Nothing listens on port 1.
	s := NewWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}), "")
	defer s.Close()

	a := numerator.NewAllocator(s, nil)
	_, err := a.Allocate(context.Background(), "u1", "2025", "INV-", 4)
	require.Error(t, err)
	assert.True(t, numerator.IsStorageUnavailable(err))
}

// newTestStore connects to REDIS_ADDR and isolates keys under a per-test prefix.
func newTestStore(t *testing.T) *CounterStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if testing.Short() || addr == "" {
		t.Skip("set REDIS_ADDR to run Redis integration tests")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "stockbook:test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return NewWithClient(client, prefix)
}

func TestIntegration_ConcurrentIncrement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	const n = 100
	seen := make(map[int64]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.FindOneAndIncrement(ctx, key)
			require.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing %d", i)
	}
}

func TestIntegration_AdvanceAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Advance(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: "2026"}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)

	got, err = s.Advance(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: "2026"}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)

	_, err = s.FindOneAndIncrement(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"})
	require.NoError(t, err)

	counters, err := s.List(ctx, "u1", "INV")
	require.NoError(t, err)
	require.Len(t, counters, 2)
	assert.Equal(t, "2025", counters[0].Period)
	assert.Equal(t, int64(9), counters[1].Sequence)

	_, found, err := s.Current(ctx, numerator.Key{Series: "INV", TenantID: "u1", Period: "2030"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIntegration_AdvanceKeepsLargeValuesExact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := numerator.Key{Series: "INV", TenantID: "u1", Period: "2025"}

	// 2^53+1 has no exact double representation.
	const big = int64(1)<<53 + 1

	got, err := s.Advance(ctx, key, big)
	require.NoError(t, err)
	assert.Equal(t, big, got)

	got, err = s.Advance(ctx, key, big-1)
	require.NoError(t, err)
	assert.Equal(t, big, got)

	got, err = s.Advance(ctx, key, 10)
	require.NoError(t, err)
	assert.Equal(t, big, got)

	got, err = s.FindOneAndIncrement(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, big+1, got)

	got, err = s.Advance(ctx, key, math.MaxInt64-1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-1), got)

	value, _, err := s.Current(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64-1), value)
}
