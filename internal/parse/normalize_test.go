package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "ACAO", NormalizeText(" Ação "))
	assert.Equal(t, "FATURAMENTO TOTAL", NormalizeText("Faturamento Total"))
	assert.Equal(t, "MARCO", NormalizeText("março"))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestMonthKey(t *testing.T) {
	cases := map[string]string{
		"2025-11":       "2025-11",
		"11-2025":       "2025-11",
		"01-11-2025":    "2025-11",
		"Novembro-2025": "2025-11",
		"novembro 2025": "2025-11",
		"Março/2026":    "2026-03",
		"2025/7":        "2025-07",
	}
	for raw, want := range cases {
		key, ok := MonthKey(raw)
		require.True(t, ok, "MonthKey(%q)", raw)
		assert.Equal(t, want, key, "MonthKey(%q)", raw)
	}

	for _, raw := range []string{"", "Total", "13-2025", "Mês-2025"} {
		_, ok := MonthKey(raw)
		assert.False(t, ok, "MonthKey(%q) should fail", raw)
	}
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Novembro", MonthName(time.November))
	assert.Equal(t, "Março", MonthName(time.March))
	assert.Equal(t, "", MonthName(time.Month(13)))
}
