package numerator

import (
	"fmt"
	"unicode"

	"stockbook/internal/core/tenant"
)

// maxTokenLength bounds period and series keys, in bytes.
const maxTokenLength = 32

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.'
}

// validateToken checks period and series keys: 1..32 bytes of [A-Za-z0-9._-].
func validateToken(field, v string) error {
	if v == "" {
		return invalidArgument(field, "is required")
	}
	if len(v) > maxTokenLength {
		return invalidArgument(field, fmt.Sprintf("must be at most %d characters", maxTokenLength))
	}
	for _, r := range v {
		if !isTokenRune(r) {
			return invalidArgument(field, "may contain only letters, digits, '.', '_' and '-'")
		}
	}
	return nil
}

func validateTenant(id string) error {
	if err := tenant.ValidateID(id); err != nil {
		return invalidArgument("tenant_id", err.Error())
	}
	return nil
}

func validatePrefix(prefix string) error {
	if len(prefix) > MaxPrefixLength {
		return invalidArgument("prefix", fmt.Sprintf("must be at most %d characters", MaxPrefixLength))
	}
	for _, r := range prefix {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return invalidArgument("prefix", "must be printable ASCII without spaces")
		}
	}
	return nil
}

func validatePadWidth(w int) error {
	if w < 0 || w > MaxPadWidth {
		return invalidArgument("pad_width", fmt.Sprintf("must be between 1 and %d", MaxPadWidth))
	}
	return nil
}

// ValidateKey checks a counter key as the allocator would.
func ValidateKey(key Key) error {
	if err := validateTenant(key.TenantID); err != nil {
		return err
	}
	if err := validateToken("series", key.Series); err != nil {
		return err
	}
	return validateToken("period", key.Period)
}
