package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		period     string
		seq        int64
		padWidth   int
		withPeriod bool
		want       string
	}{
		{"yearly", "INV-", "2025", 1, 4, true, "INV-2025-0001"},
		{"default width", "SALE-", "2025", 12, 0, true, "SALE-2025-0012"},
		{"no period", "PO-", "all", 7, 4, false, "PO-0007"},
		{"overflow keeps digits", "INV-", "2025", 123456, 4, true, "INV-2025-123456"},
		{"empty prefix", "", "2025", 3, 2, true, "2025-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.prefix, tt.period, tt.seq, tt.padWidth, tt.withPeriod))
		})
	}
}

func TestParseNumber(t *testing.T) {
	yearly := NewSeries("INV-")
	monthly := Series{Prefix: "RF-", PadWidth: 4, Reset: ResetMonth}
	never := Series{Prefix: "PO-", PadWidth: 4, Reset: ResetNever}

	period, seq, err := ParseNumber("INV-2025-0042", yearly)
	require.NoError(t, err)
	assert.Equal(t, "2025", period)
	assert.Equal(t, int64(42), seq)

	period, seq, err = ParseNumber("RF-2025-03-0007", monthly)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", period)
	assert.Equal(t, int64(7), seq)

	period, seq, err = ParseNumber("PO-0310", never)
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, period)
	assert.Equal(t, int64(310), seq)

	for _, bad := range []string{"SALE-2025-0001", "INV-0001", "INV-2025-", "INV-2025-00x1", "INV-2025-0000"} {
		_, _, err := ParseNumber(bad, yearly)
		assert.Error(t, err, bad)
		assert.True(t, IsInvalidArgument(err), bad)
	}
}

func TestSeriesName(t *testing.T) {
	assert.Equal(t, "INV", SeriesName("INV-"))
	assert.Equal(t, "SALE", SeriesName("sale-"))
	assert.Equal(t, "PO", SeriesName("PO/"))
	assert.Equal(t, "A_B", SeriesName("A/B-"))
	assert.Equal(t, "_", SeriesName(""))
}

func TestSeries_PeriodKey(t *testing.T) {
	at := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026", Series{Reset: ResetYear}.PeriodKey(at))
	assert.Equal(t, "2026-01", Series{Reset: ResetMonth}.PeriodKey(at))
	assert.Equal(t, PeriodAll, Series{Reset: ResetNever}.PeriodKey(at))
}

func TestSeries_Namespace(t *testing.T) {
	assert.Equal(t, "INV", NewSeries("INV-").Namespace())
	assert.Equal(t, "invoices", Series{Name: "invoices", Prefix: "INV-"}.Namespace())
}
