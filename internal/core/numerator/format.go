package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// DocumentNumber is an allocated, formatted number together with its parts.
type DocumentNumber struct {
	Value    string `json:"number"`
	Series   string `json:"series"`
	Period   string `json:"period"`
	Sequence int64  `json:"sequence"`
}

// String returns the formatted number.
func (n DocumentNumber) String() string {
	return n.Value
}

// FormatNumber builds "{prefix}{period}-{seq}" or, without period,
// "{prefix}{seq}", zero-padding seq to padWidth digits (0 means default).
// Sequences wider than padWidth are printed in full.
func FormatNumber(prefix, period string, seq int64, padWidth int, withPeriod bool) string {
	if padWidth <= 0 {
		padWidth = DefaultPadWidth
	}
	if withPeriod {
		return fmt.Sprintf("%s%s-%0*d", prefix, period, padWidth, seq)
	}
	return fmt.Sprintf("%s%0*d", prefix, padWidth, seq)
}

// ParseNumber splits a number formatted for series back into period and
// sequence. For never-resetting series period is PeriodAll.
func ParseNumber(formatted string, series Series) (period string, seq int64, err error) {
	rest, ok := strings.CutPrefix(formatted, series.Prefix)
	if !ok {
		return "", 0, invalidArgument("number", fmt.Sprintf("must start with %q", series.Prefix))
	}

	digits := rest
	period = PeriodAll
	if series.Periodic() {
		i := strings.LastIndexByte(rest, '-')
		if i <= 0 {
			return "", 0, invalidArgument("number", "has no period part")
		}
		period, digits = rest[:i], rest[i+1:]
		if err := validateToken("period", period); err != nil {
			return "", 0, err
		}
	}

	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "", 0, invalidArgument("number", "sequence must be decimal digits")
	}
	seq, perr := strconv.ParseInt(digits, 10, 64)
	if perr != nil || seq <= 0 {
		return "", 0, invalidArgument("number", "sequence must be a positive integer")
	}
	return period, seq, nil
}
