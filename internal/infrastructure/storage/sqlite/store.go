// Package sqlite provides a single-file durable counter store.
//
// SQLite serializes writers, and each increment is one
// INSERT ... ON CONFLICT DO UPDATE ... RETURNING statement, so the
// read-modify-write never spans two statements.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/mattn/go-sqlite3"

	"stockbook/internal/core/numerator"
)

//go:embed schema.sql
var schemaSQL string

const counterTable = "sequence_counters"

// Store is a counter store backed by a SQLite database file.
type Store struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

var (
	_ numerator.AtomicCounterStore = (*Store)(nil)
	_ numerator.CounterReader      = (*Store)(nil)
	_ numerator.CounterAdvancer    = (*Store)(nil)
	_ numerator.Pinger             = (*Store)(nil)
)

// Open creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode so readers do not block the writer
//   - FULL synchronous mode: a returned number is on disk
//   - 5-second busy timeout for lock contention from other processes
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: pragmas are per-connection and SQLite has one writer anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already configured database handle. The schema is
// expected to exist.
func NewWithDB(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping implements numerator.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FindOneAndIncrement implements numerator.AtomicCounterStore.
func (s *Store) FindOneAndIncrement(ctx context.Context, key numerator.Key) (int64, error) {
	now := s.now()
	query, args, err := s.builder.
		Insert(counterTable).
		Columns("series", "tenant_id", "period", "sequence", "created_at", "updated_at").
		Values(key.Series, key.TenantID, key.Period, 1, now, now).
		Suffix(`ON CONFLICT (series, tenant_id, period) DO UPDATE
			SET sequence = sequence_counters.sequence + 1, updated_at = excluded.updated_at
			WHERE sequence_counters.sequence < ?
			RETURNING sequence`, int64(math.MaxInt64)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	// SQLite promotes an overflowing integer to REAL, so a full counter is
	// left alone by the WHERE guard and the statement returns no row.
	var seq int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment %s: %w", key, numerator.ErrCounterExhausted)
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return seq, nil
}

// Advance implements numerator.CounterAdvancer.
func (s *Store) Advance(ctx context.Context, key numerator.Key, floor int64) (int64, error) {
	now := s.now()
	query, args, err := s.builder.
		Insert(counterTable).
		Columns("series", "tenant_id", "period", "sequence", "created_at", "updated_at").
		Values(key.Series, key.TenantID, key.Period, floor, now, now).
		Suffix("ON CONFLICT (series, tenant_id, period) DO UPDATE SET sequence = max(sequence, excluded.sequence), updated_at = excluded.updated_at RETURNING sequence").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advance %s: %w", key, err)
	}
	return seq, nil
}

// Current implements numerator.CounterReader.
func (s *Store) Current(ctx context.Context, key numerator.Key) (int64, bool, error) {
	query, args, err := s.builder.
		Select("sequence").
		From(counterTable).
		Where(squirrel.Eq{"series": key.Series, "tenant_id": key.TenantID, "period": key.Period}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build query: %w", err)
	}

	var seq int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	return seq, true, nil
}

// List implements numerator.CounterReader.
func (s *Store) List(ctx context.Context, tenantID, series string) ([]numerator.Counter, error) {
	query, args, err := s.builder.
		Select("series", "tenant_id", "period", "sequence", "updated_at").
		From(counterTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "series": series}).
		OrderBy("period").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	counters := make([]numerator.Counter, 0)
	if err := sqlscan.Select(ctx, s.db, &counters, query, args...); err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	return counters, nil
}
