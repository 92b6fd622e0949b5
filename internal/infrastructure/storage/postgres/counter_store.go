package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockbook/internal/core/numerator"
)

const counterTable = "sequence_counters"

// Querier is the subset of pgxpool.Pool / pgx.Tx used by the store.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CounterStore implements numerator.AtomicCounterStore on PostgreSQL.
//
// Every mutation is a single INSERT ... ON CONFLICT DO UPDATE ... RETURNING:
// the row lock taken by the upsert serializes concurrent callers on the same
// key, and the returned value is the one this statement wrote.
type CounterStore struct {
	db      Querier
	builder squirrel.StatementBuilderType
}

var (
	_ numerator.AtomicCounterStore = (*CounterStore)(nil)
	_ numerator.CounterReader      = (*CounterStore)(nil)
	_ numerator.CounterAdvancer    = (*CounterStore)(nil)
	_ numerator.Pinger             = (*CounterStore)(nil)
)

// NewCounterStore creates a store over db (usually a *pgxpool.Pool).
func NewCounterStore(db Querier) *CounterStore {
	return &CounterStore{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindOneAndIncrement implements numerator.AtomicCounterStore.
func (s *CounterStore) FindOneAndIncrement(ctx context.Context, key numerator.Key) (int64, error) {
	query, args, err := s.builder.
		Insert(counterTable).
		Columns("series", "tenant_id", "period", "sequence").
		Values(key.Series, key.TenantID, key.Period, 1).
		Suffix(`ON CONFLICT (series, tenant_id, period) DO UPDATE
			SET sequence = sequence_counters.sequence + 1, updated_at = now()
			RETURNING sequence`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var seq int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return seq, nil
}

// Advance implements numerator.CounterAdvancer.
func (s *CounterStore) Advance(ctx context.Context, key numerator.Key, floor int64) (int64, error) {
	query, args, err := s.builder.
		Insert(counterTable).
		Columns("series", "tenant_id", "period", "sequence").
		Values(key.Series, key.TenantID, key.Period, floor).
		Suffix(`ON CONFLICT (series, tenant_id, period) DO UPDATE
			SET sequence = GREATEST(sequence_counters.sequence, EXCLUDED.sequence), updated_at = now()
			RETURNING sequence`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var seq int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advance %s: %w", key, err)
	}
	return seq, nil
}

// Current implements numerator.CounterReader.
func (s *CounterStore) Current(ctx context.Context, key numerator.Key) (int64, bool, error) {
	query, args, err := s.builder.
		Select("sequence").
		From(counterTable).
		Where(squirrel.Eq{"series": key.Series, "tenant_id": key.TenantID, "period": key.Period}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build query: %w", err)
	}

	var seq int64
	err = s.db.QueryRow(ctx, query, args...).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	return seq, true, nil
}

// List implements numerator.CounterReader.
func (s *CounterStore) List(ctx context.Context, tenantID, series string) ([]numerator.Counter, error) {
	query, args, err := s.builder.
		Select("series", "tenant_id", "period", "sequence", "updated_at").
		From(counterTable).
		Where(squirrel.Eq{"series": series, "tenant_id": tenantID}).
		OrderBy("period").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	counters := make([]numerator.Counter, 0)
	if err := pgxscan.Select(ctx, s.db, &counters, query, args...); err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	return counters, nil
}

// Ping implements numerator.Pinger when the querier supports it.
func (s *CounterStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	_, err := s.db.Exec(ctx, "SELECT 1")
	return err
}

// Close releases the pool if the store owns one.
func (s *CounterStore) Close() error {
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
