package numerator

import (
	"context"
	"time"
)

// Key identifies one counter record.
type Key struct {
	Series   string
	TenantID string
	Period   string
}

// String renders the key for logs.
func (k Key) String() string {
	return k.Series + "/" + k.TenantID + "/" + k.Period
}

// AtomicCounterStore is the only storage operation allocation depends on.
//
// FindOneAndIncrement creates the counter for key with value 1 if it does
// not exist, otherwise increments it by exactly one, and returns the
// post-increment value. The read-modify-write must be a single atomic,
// durable, linearizable operation for the key. On error no increment may
// have been applied.
type AtomicCounterStore interface {
	FindOneAndIncrement(ctx context.Context, key Key) (int64, error)
}

// Counter is a snapshot of one counter record.
type Counter struct {
	Series    string    `json:"series" db:"series"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Period    string    `json:"period" db:"period"`
	Sequence  int64     `json:"sequence" db:"sequence"`
	UpdatedAt time.Time `json:"updated_at,omitzero" db:"updated_at"`
}

// CounterReader is implemented by stores that can report counter values.
type CounterReader interface {
	// Current returns the last issued value for key; found is false if
	// nothing was ever allocated.
	Current(ctx context.Context, key Key) (value int64, found bool, err error)

	// List returns every counter of one tenant in one series, ordered by period.
	List(ctx context.Context, tenantID, series string) ([]Counter, error)
}

// CounterAdvancer is implemented by stores that can raise a counter.
//
// Advance atomically sets the counter to max(current, floor) and returns
// the resulting value. It never decreases a counter.
type CounterAdvancer interface {
	Advance(ctx context.Context, key Key, floor int64) (int64, error)
}

// Pinger is implemented by stores with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}
