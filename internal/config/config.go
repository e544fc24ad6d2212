package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/reisemkt/dashboard-api/internal/parse"
)

// MonthSheet describes one month tab of the daily results spreadsheet.
type MonthSheet struct {
	ID    string // "YYYY-MM"
	Sheet string // tab name, e.g. "Novembro"
	Label string
}

type Config struct {
	// daily results spreadsheet
	DailySheetID string
	DailyRange   string
	DailyMonths  []MonthSheet

	// CRM spreadsheet family
	CrmSheetID      string
	CrmSheets       []string
	CrmOrdersRange  string
	CrmGoalsSheet   string
	CrmGoalsRange   string
	CrmActionsRange string

	Port        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		DailySheetID: os.Getenv("DAILY_SHEET_ID"),
		DailyRange:   envOr("DAILY_SHEET_RANGE", "A3:AN33"),
		DailyMonths:  parseMonthSheets(os.Getenv("DAILY_MONTH_SHEETS")),

		CrmSheetID:      os.Getenv("CRM_SHEET_ID"),
		CrmSheets:       splitList(os.Getenv("CRM_SHEETS")),
		CrmOrdersRange:  envOr("CRM_ORDERS_RANGE", "A:H"),
		CrmGoalsSheet:   envOr("CRM_GOALS_SHEET", "Metas_CRM"),
		CrmGoalsRange:   envOr("CRM_GOALS_RANGE", "A:D"),
		CrmActionsRange: envOr("CRM_ACTIONS_RANGE", "N:Q"),

		Port:        envOr("PORT", "8080"),
		HTTPTimeout: to,
		LogLevel:    lvl,
	}
}

// Validate checks the configuration needed before any load can run.
// A missing spreadsheet id is fatal and blocks all loading.
func (c Config) Validate() error {
	var errs []error
	if c.DailySheetID == "" {
		errs = append(errs, errors.New("DAILY_SHEET_ID not set"))
	}
	if len(c.DailyMonths) == 0 {
		errs = append(errs, errors.New("DAILY_MONTH_SHEETS not set (e.g. \"Outubro=2025-10,Novembro=2025-11\")"))
	}
	if c.CrmSheetID == "" {
		errs = append(errs, errors.New("CRM_SHEET_ID not set"))
	}
	return errors.Join(errs...)
}

// CrmSheetNames returns the configured CRM order tabs, defaulting to the
// current month's tab named "<Month>-<Year>" in Portuguese.
func (c Config) CrmSheetNames(now time.Time) []string {
	if len(c.CrmSheets) > 0 {
		return c.CrmSheets
	}
	return []string{fmt.Sprintf("%s-%d", parse.MonthName(now.Month()), now.Year())}
}

// parseMonthSheets reads "Outubro=2025-10,Novembro=2025-11" pairs. Entries
// whose id is not a valid month are skipped.
func parseMonthSheets(raw string) []MonthSheet {
	var out []MonthSheet
	for _, part := range splitList(raw) {
		name, id, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if _, valid := parse.ParseMonthContext(id); !valid || name == "" {
			continue
		}
		out = append(out, MonthSheet{ID: id, Sheet: name, Label: name})
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
