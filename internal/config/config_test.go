package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DAILY_SHEET_ID", "daily-id")
	t.Setenv("CRM_SHEET_ID", "crm-id")
	t.Setenv("DAILY_MONTH_SHEETS", "Novembro=2025-11")

	cfg := FromEnv()

	assert.Equal(t, "A3:AN33", cfg.DailyRange)
	assert.Equal(t, "A:H", cfg.CrmOrdersRange)
	assert.Equal(t, "Metas_CRM", cfg.CrmGoalsSheet)
	assert.Equal(t, "A:D", cfg.CrmGoalsRange)
	assert.Equal(t, "N:Q", cfg.CrmActionsRange)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DAILY_SHEET_RANGE", "A1:Z100")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")

	cfg := FromEnv()

	assert.Equal(t, "A1:Z100", cfg.DailyRange)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestValidateReportsAllMissing(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAILY_SHEET_ID")
	assert.Contains(t, err.Error(), "DAILY_MONTH_SHEETS")
	assert.Contains(t, err.Error(), "CRM_SHEET_ID")
}

func TestParseMonthSheets(t *testing.T) {
	out := parseMonthSheets("Outubro=2025-10, Novembro=2025-11, semid, Ruim=13-13")

	require.Len(t, out, 2, "entries without a valid month id are skipped")
	assert.Equal(t, MonthSheet{ID: "2025-10", Sheet: "Outubro", Label: "Outubro"}, out[0])
	assert.Equal(t, "2025-11", out[1].ID)
}

func TestCrmSheetNamesDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.Local)

	assert.Equal(t, []string{"Novembro-2025"}, Config{}.CrmSheetNames(now))
	assert.Equal(t, []string{"Tab1", "Tab2"}, Config{CrmSheets: []string{"Tab1", "Tab2"}}.CrmSheetNames(now))
}
