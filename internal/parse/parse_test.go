package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	cases := map[string]float64{
		"60.464,77":    60464.77,
		"":             0,
		"197.306":      197306, // dot alone is a thousands separator
		"60464,77":     60464.77,
		"60464.77":     6046477, // same rule, by design of the source format
		"R$ 60.464,77": 60464.77,
		"152641,48":    152641.48,
		"60464":        60464,
		"abc":          0,
		"-":            0,
	}
	for raw, want := range cases {
		assert.InDelta(t, want, Currency(raw), 1e-9, "Currency(%q)", raw)
	}
}

func TestInteger(t *testing.T) {
	cases := map[string]int{
		"1.234":  1234,
		"152 un": 152,
		"12":     12,
		"":       0,
		"-":      0,
		"-0":     0,
		"-5":     -5,
		"abc":    0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Integer(raw), "Integer(%q)", raw)
	}
}

func TestPercent(t *testing.T) {
	cases := map[string]float64{
		"6,61%":  0.0661,
		"0,05":   0.05, // already a fraction, passes through
		"5":      0.05,
		"6.61":   0.0661,
		"0.0661": 0.0661,
		"1":      1, // boundary: not divided
		"":       0,
		"x":      0,
	}
	for raw, want := range cases {
		assert.InDelta(t, want, Percent(raw), 1e-9, "Percent(%q)", raw)
	}
}

func TestLocalDate(t *testing.T) {
	ctx, ok := ParseMonthContext("2025-11")
	require.True(t, ok)

	d, ok := LocalDate("17/11/2025", ctx)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.November, 17, 0, 0, 0, 0, time.Local), d)

	d, ok = LocalDate("17", ctx)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.November, 17, 0, 0, 0, 0, time.Local), d)

	d, ok = LocalDate("17,0", ctx)
	require.True(t, ok)
	assert.Equal(t, 17, d.Day())

	d, ok = LocalDate("2025-11-03", ctx)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.November, 3, 0, 0, 0, 0, time.Local), d)

	// two-digit year resolves to the fallback year, it is not expanded
	d, ok = LocalDate("17/11/99", ctx)
	require.True(t, ok)
	assert.Equal(t, 2025, d.Year())

	_, ok = LocalDate("", ctx)
	assert.False(t, ok)
	_, ok = LocalDate("Total do mês", ctx)
	assert.False(t, ok)
	_, ok = LocalDate("31/02/2025", ctx)
	assert.False(t, ok, "rolled-over dates are invalid")

	// bare day without a usable context cannot be resolved
	_, ok = LocalDate("17", MonthContext{})
	assert.False(t, ok)
}

func TestParseMonthContext(t *testing.T) {
	ctx, ok := ParseMonthContext("2025-01")
	require.True(t, ok)
	assert.Equal(t, "2025-01", ctx.Key())

	_, ok = ParseMonthContext("2025-13")
	assert.False(t, ok)
	_, ok = ParseMonthContext("novembro")
	assert.False(t, ok)
}

func TestDayHelpers(t *testing.T) {
	d := time.Date(2025, time.November, 17, 22, 15, 3, 0, time.Local)
	assert.Equal(t, time.Date(2025, time.November, 17, 0, 0, 0, 0, time.Local), Day(d))
	assert.Equal(t, "2025-11", MonthKeyOf(d))
	assert.Equal(t, 30, DaysInMonth(2025, time.November))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
}
