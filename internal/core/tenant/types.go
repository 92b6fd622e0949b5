// Package tenant carries the tenant namespace that scopes every document counter.
package tenant

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxIDLength is the longest accepted tenant identifier, in bytes.
const MaxIDLength = 128

// Source records how the tenant of a request was resolved.
type Source string

const (
	SourceToken  Source = "token"
	SourceHeader Source = "header"
	SourceStatic Source = "static"
)

// Tenant is the account namespace a request acts on behalf of.
type Tenant struct {
	ID     string
	Source Source
}

// ErrInvalidID is returned by ValidateID.
var ErrInvalidID = errors.New("invalid tenant id")

// ValidateID checks that id is usable as a counter scope.
// Tenant IDs are opaque: any non-empty UTF-8 string without whitespace
// or control characters, up to MaxIDLength bytes.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidID, MaxIDLength)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidID)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains whitespace or control characters", ErrInvalidID)
		}
	}
	return nil
}
