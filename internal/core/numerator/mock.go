package numerator

import "context"

// MockStore is a test implementation of AtomicCounterStore.
// Use in unit tests to avoid database dependencies.
type MockStore struct {
	FindOneAndIncrementFunc func(ctx context.Context, key Key) (int64, error)
}

// FindOneAndIncrement implements AtomicCounterStore.
func (m *MockStore) FindOneAndIncrement(ctx context.Context, key Key) (int64, error) {
	if m.FindOneAndIncrementFunc != nil {
		return m.FindOneAndIncrementFunc(ctx, key)
	}
	// Default: every call is the first one
	return 1, nil
}

// Ensure compile-time interface compliance.
var _ AtomicCounterStore = (*MockStore)(nil)
