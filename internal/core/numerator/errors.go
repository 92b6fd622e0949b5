package numerator

import (
	"errors"
	"fmt"

	"stockbook/internal/core/apperror"
)

var (
	// ErrInvalidArgument marks malformed tenant, period, prefix or width input.
	ErrInvalidArgument = errors.New("numerator: invalid argument")

	// ErrStorageUnavailable marks a failed or timed-out counter round trip.
	// No number was consumed by the failed call; the caller may retry.
	ErrStorageUnavailable = errors.New("numerator: storage unavailable")

	// ErrCounterExhausted is returned by stores when a counter already holds
	// the largest int64. The counter is left unchanged.
	ErrCounterExhausted = errors.New("numerator: counter exhausted")

	// ErrNotSupported is returned by adapters lacking an optional capability.
	ErrNotSupported = errors.New("numerator: operation not supported by store")
)

func invalidArgument(field, reason string) error {
	return apperror.NewInvalidArgument(fmt.Sprintf("%s %s", field, reason)).
		WithDetail("field", field).
		WithCause(ErrInvalidArgument)
}

func storageUnavailable(key Key, cause error) error {
	return apperror.NewStorageUnavailable(fmt.Errorf("%w: %w", ErrStorageUnavailable, cause)).
		WithDetail("series", key.Series).
		WithDetail("period", key.Period)
}

func notSupported(op string) error {
	return apperror.NewNotImplemented(fmt.Sprintf("counter store does not support %s", op)).
		WithCause(ErrNotSupported)
}

// IsInvalidArgument reports whether err is an InvalidArgument failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsStorageUnavailable reports whether err is a StorageUnavailable failure.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
