// Package numerator allocates human-readable document numbers from durable,
// per-tenant, per-period counters.
//
// The package owns the contract (AtomicCounterStore) and the allocation
// logic. Storage adapters live in the infrastructure layer.
package numerator

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPadWidth is used when a caller passes a zero pad width.
const DefaultPadWidth = 4

// MaxPadWidth is the widest supported zero padding (int64 has 19 digits).
const MaxPadWidth = 18

// MaxPrefixLength bounds the literal prefix of a document number, in bytes.
const MaxPrefixLength = 16

// PeriodAll is the period key of a series that never resets.
const PeriodAll = "all"

// ResetPeriod controls when a series starts over from 1.
type ResetPeriod string

const (
	ResetYear  ResetPeriod = "year"
	ResetMonth ResetPeriod = "month"
	ResetNever ResetPeriod = "never"
)

// Series describes one numbering scheme, e.g. invoices "INV-2025-0001".
type Series struct {
	// Name is the counter namespace. Derived from Prefix when empty.
	Name string `json:"name" mapstructure:"name"`

	// Prefix is the literal text in front of the number (e.g., "INV-")
	Prefix string `json:"prefix" mapstructure:"prefix"`

	// PadWidth is the minimum digit count of the sequence (default 4)
	PadWidth int `json:"pad_width" mapstructure:"pad_width"`

	// Reset: "year", "month", "never"
	Reset ResetPeriod `json:"reset" mapstructure:"reset"`
}

// NewSeries returns a yearly series with default width.
func NewSeries(prefix string) Series {
	return Series{
		Prefix:   prefix,
		PadWidth: DefaultPadWidth,
		Reset:    ResetYear,
	}
}

// WithDefaults fills the zero pad width and the empty reset policy.
func (s Series) WithDefaults() Series {
	if s.PadWidth == 0 {
		s.PadWidth = DefaultPadWidth
	}
	if s.Reset == "" {
		s.Reset = ResetYear
	}
	return s
}

// Namespace returns the counter namespace of the series.
func (s Series) Namespace() string {
	if s.Name != "" {
		return s.Name
	}
	return SeriesName(s.Prefix)
}

// Periodic reports whether numbers of this series embed the period.
func (s Series) Periodic() bool {
	return s.Reset != ResetNever
}

// PeriodKey returns the counter partition for a document dated at.
func (s Series) PeriodKey(at time.Time) string {
	switch s.Reset {
	case ResetMonth:
		return at.Format("2006-01")
	case ResetNever:
		return PeriodAll
	default:
		return at.Format("2006")
	}
}

// Validate checks the series definition.
func (s Series) Validate() error {
	switch s.Reset {
	case ResetYear, ResetMonth, ResetNever:
	default:
		return invalidArgument("reset", fmt.Sprintf("must be one of year, month, never (got %q)", s.Reset))
	}
	if err := validatePrefix(s.Prefix); err != nil {
		return err
	}
	if err := validatePadWidth(s.PadWidth); err != nil {
		return err
	}
	return validateToken("series", s.Namespace())
}

// SeriesName derives a counter namespace from a prefix: upper-cased with
// trailing separators removed and unsupported characters replaced by '_'.
// "INV-" becomes "INV"; an empty prefix maps to "_".
func SeriesName(prefix string) string {
	name := strings.TrimRight(strings.ToUpper(prefix), "-_./# ")
	if name == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		if isTokenRune(r) {
			return r
		}
		return '_'
	}, name)
}
