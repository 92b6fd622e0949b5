// Package redis provides a counter store on Redis hashes.
//
// One hash holds every period of a (series, tenant) pair; HINCRBY is the
// atomic increment-and-fetch. Durability depends on the server running
// with AOF persistence (appendonly yes, appendfsync always).
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"stockbook/internal/core/numerator"
)

// DefaultKeyPrefix namespaces counter hashes.
const DefaultKeyPrefix = "stockbook:seq:"

// advanceScript raises a hash field to ARGV[2] unless it is already higher.
// Values are compared as canonical decimal strings: Lua numbers are doubles
// and would round counters above 2^53.
var advanceScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1]) or '0'
local floor = ARGV[2]
if #floor > #cur or (#floor == #cur and floor > cur) then
  redis.call('HSET', KEYS[1], ARGV[1], floor)
  return floor
end
return cur
`)

// Config holds Redis connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
}

// CounterStore implements numerator.AtomicCounterStore on Redis.
type CounterStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

var (
	_ numerator.AtomicCounterStore = (*CounterStore)(nil)
	_ numerator.CounterReader      = (*CounterStore)(nil)
	_ numerator.CounterAdvancer    = (*CounterStore)(nil)
	_ numerator.Pinger             = (*CounterStore)(nil)
)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*CounterStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient creates a store with an existing client.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *CounterStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &CounterStore{client: client, keyPrefix: keyPrefix}
}

// hashKey: series never contains ':', so the tenant is everything after the
// first separator and keys cannot collide.
func (s *CounterStore) hashKey(series, tenantID string) string {
	return s.keyPrefix + series + ":" + tenantID
}

// FindOneAndIncrement implements numerator.AtomicCounterStore.
func (s *CounterStore) FindOneAndIncrement(ctx context.Context, key numerator.Key) (int64, error) {
	seq, err := s.client.HIncrBy(ctx, s.hashKey(key.Series, key.TenantID), key.Period, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return seq, nil
}

// Advance implements numerator.CounterAdvancer.
func (s *CounterStore) Advance(ctx context.Context, key numerator.Key, floor int64) (int64, error) {
	seq, err := advanceScript.Run(ctx, s.client, []string{s.hashKey(key.Series, key.TenantID)},
		key.Period, strconv.FormatInt(floor, 10)).Int64()
	if err != nil {
		return 0, fmt.Errorf("advance %s: %w", key, err)
	}
	return seq, nil
}

// Current implements numerator.CounterReader.
func (s *CounterStore) Current(ctx context.Context, key numerator.Key) (int64, bool, error) {
	seq, err := s.client.HGet(ctx, s.hashKey(key.Series, key.TenantID), key.Period).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	return seq, true, nil
}

// List implements numerator.CounterReader. Redis keeps no update times.
func (s *CounterStore) List(ctx context.Context, tenantID, series string) ([]numerator.Counter, error) {
	fields, err := s.client.HGetAll(ctx, s.hashKey(series, tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}

	counters := make([]numerator.Counter, 0, len(fields))
	for period, raw := range fields {
		seq, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("counter %s/%s/%s holds %q: %w", series, tenantID, period, raw, err)
		}
		counters = append(counters, numerator.Counter{
			Series:   series,
			TenantID: tenantID,
			Period:   period,
			Sequence: seq,
		})
	}
	sort.Slice(counters, func(i, j int) bool { return counters[i].Period < counters[j].Period })
	return counters, nil
}

// Ping implements numerator.Pinger.
func (s *CounterStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *CounterStore) Close() error {
	return s.client.Close()
}
