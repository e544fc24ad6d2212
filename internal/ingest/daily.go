// Package ingest loads the daily results and CRM spreadsheets, normalizes
// their rows and produces the immutable datasets the aggregation layer
// works on.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/reisemkt/dashboard-api/internal/config"
	"github.com/reisemkt/dashboard-api/internal/models"
	"github.com/reisemkt/dashboard-api/internal/parse"
	"github.com/reisemkt/dashboard-api/internal/sheets"
)

// DailyLoader fetches every configured month sheet and materializes one
// chronologically sorted daily series.
type DailyLoader struct {
	f   sheets.Fetcher
	cfg config.Config
	log *slog.Logger
	now func() time.Time
}

func NewDailyLoader(f sheets.Fetcher, cfg config.Config, log *slog.Logger) *DailyLoader {
	return &DailyLoader{f: f, cfg: cfg, log: log, now: time.Now}
}

// Load fetches all month sheets concurrently, concatenates the materialized
// rows, sorts ascending by date and drops rows dated after today's local
// midnight (template rows for days that have not happened yet). Any single
// month failing fails the whole load.
func (l *DailyLoader) Load(ctx context.Context) ([]models.DailyRecord, error) {
	months := l.cfg.DailyMonths
	tables := make([]*sheets.Table, len(months))
	errs := make([]error, len(months))

	var wg sync.WaitGroup
	for i, m := range months {
		wg.Add(1)
		go func(i int, m config.MonthSheet) {
			defer wg.Done()
			t, err := l.f.Fetch(ctx, l.cfg.DailySheetID, m.Sheet, l.cfg.DailyRange)
			if err != nil {
				errs[i] = fmt.Errorf("load daily sheet %s: %w", m.Label, err)
				return
			}
			tables[i] = t
		}(i, m)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var all []models.DailyRecord
	for i, m := range months {
		rows := MaterializeDaily(tables[i], m)
		l.log.Debug("daily sheet materialized", slog.String("month", m.ID), slog.Int("rows", len(rows)))
		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })

	today := parse.Day(l.now())
	kept := all[:0]
	for _, r := range all {
		if !r.Date.After(today) {
			kept = append(kept, r)
		}
	}
	l.log.Info("daily dataset loaded", slog.Int("rows", len(kept)), slog.Int("months", len(months)))
	return kept, nil
}

// MaterializeDaily turns one month sheet's raw rows into daily records.
//
// Dates resolve in three steps: an explicit date cell wins; an empty date
// cell on a row with activity continues from the previous row's date plus
// one day, unless that inference would cross into another month (those rows
// are monthly total lines, not days); everything else is spreadsheet noise
// (headers, blanks, subtotals) and is silently dropped.
func MaterializeDaily(t *sheets.Table, month config.MonthSheet) []models.DailyRecord {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	monthCtx, _ := parse.ParseMonthContext(month.ID)

	var (
		colDate     = t.ColumnIndex("Data", "data")
		colRevenue  = t.ColumnIndex("Receita Faturada")
		colGoal     = t.ColumnIndex("Meta/dia")
		colSessions = t.ColumnIndex("Sessões")
		colOrders   = t.ColumnIndex("Pedidos Aprovados")
		colSpend    = t.ColumnIndex("Investimento total", "Investimento Total", "Investimento")
		colCAC      = t.ColumnIndex("CAC")
		colTicket   = t.ColumnIndex("Ticket Médio")
		colConv     = t.ColumnIndex("Taxa de conversão")
		colCPS      = t.ColumnIndex("CPS (Geral)", "CPS")
		colMktPct   = t.ColumnIndex("% MKT")
	)

	var out []models.DailyRecord
	var lastDate time.Time

	for _, row := range t.Rows {
		revenue := money(sheets.At(row, colRevenue))
		goal := money(sheets.At(row, colGoal))
		sessions := parse.Integer(sheets.At(row, colSessions).Text())
		orders := parse.Integer(sheets.At(row, colOrders).Text())
		spend := money(sheets.At(row, colSpend))
		cac := money(sheets.At(row, colCAC))

		hasActivity := revenue != 0 || sessions != 0 || orders != 0 || spend != 0

		dateCell := sheets.At(row, colDate)
		rawDate := dateCell.Text()
		date, ok := parse.LocalDate(rawDate, monthCtx)
		if !ok && rawDate != "" {
			// the transport may hand dates back as typed cells
			if d, dok := dateCell.Date(); dok {
				date, ok = parse.Day(d), true
			}
		}
		if !ok {
			if rawDate != "" || !hasActivity || lastDate.IsZero() {
				continue
			}
			next := lastDate.AddDate(0, 0, 1)
			if next.Month() != lastDate.Month() || next.Year() != lastDate.Year() {
				// a monthly total line must not become day one of the next month
				continue
			}
			date = next
		}
		lastDate = date

		newCustomers := 0
		if cac > 0 && spend > 0 {
			newCustomers = int(math.Round(spend / cac))
		}

		out = append(out, models.DailyRecord{
			Date:          date,
			MonthID:       month.ID,
			MonthLabel:    month.Label,
			Revenue:       revenue,
			DailyGoal:     goal,
			Sessions:      sessions,
			Orders:        orders,
			Spend:         spend,
			NewCustomers:  newCustomers,
			SheetCAC:      cac,
			SheetTicket:   money(sheets.At(row, colTicket)),
			SheetConvRate: parse.Percent(sheets.At(row, colConv).Text()),
			SheetCPS:      money(sheets.At(row, colCPS)),
			SheetMktPct:   parse.Percent(sheets.At(row, colMktPct).Text()),
		})
	}
	return out
}

// money reads a currency cell. A typed numeric value from the JSON wire is
// already exact and passes through; the pt-BR string parser would strip its
// decimal dot as a thousands separator. Only string cells go through it.
func money(c sheets.Cell) float64 {
	if v, ok := c.Value.(float64); ok {
		return v
	}
	return parse.Currency(c.Text())
}
