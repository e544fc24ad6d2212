package httpx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisemkt/dashboard-api/internal/models"
)

func TestWriteDailyCsvBlanksZeroRatios(t *testing.T) {
	rows := []models.DailyRecord{{
		Date:    time.Date(2025, time.November, 16, 0, 0, 0, 0, time.Local),
		Revenue: 500,
		Orders:  0,
	}}

	var b strings.Builder
	require.NoError(t, WriteDailyCsv(&b, rows))

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	fields := strings.Split(lines[1], ";")
	require.Len(t, fields, len(dailyCsvHeaders))
	assert.Equal(t, "500,00", fields[1])
	assert.Equal(t, "", fields[5], "ticket is blank without orders")
	assert.Equal(t, "0,00", fields[6], "conversion prints as zero, not blank")
	assert.Equal(t, "", fields[7], "CPS is blank without sessions")
	assert.Equal(t, "", fields[10], "spend is blank when zero")
	assert.Equal(t, "", fields[11], "CAC is blank without new customers")
}

func TestCommaDecimal(t *testing.T) {
	assert.Equal(t, "1234,57", commaDecimal(1234.567, 2))
	assert.Equal(t, "0,0", commaDecimal(0, 1))
	assert.Equal(t, "-3,50", commaDecimal(-3.5, 2))
}
