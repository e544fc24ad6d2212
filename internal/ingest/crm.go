package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/reisemkt/dashboard-api/internal/config"
	"github.com/reisemkt/dashboard-api/internal/models"
	"github.com/reisemkt/dashboard-api/internal/parse"
	"github.com/reisemkt/dashboard-api/internal/sheets"
)

// CrmLoader fetches order rows, the monthly goal table and the no-coupon
// action summary from the CRM spreadsheet family.
type CrmLoader struct {
	f   sheets.Fetcher
	cfg config.Config
	log *slog.Logger
	now func() time.Time
}

func NewCrmLoader(f sheets.Fetcher, cfg config.Config, log *slog.Logger) *CrmLoader {
	return &CrmLoader{f: f, cfg: cfg, log: log, now: time.Now}
}

// Load issues all sub-fetches concurrently. A failing orders range is fatal;
// the goals and no-coupon ranges are supplementary and degrade to empty with
// a warning.
func (l *CrmLoader) Load(ctx context.Context) (*models.CrmDataset, error) {
	sheetNames := l.cfg.CrmSheetNames(l.now())

	type sheetResult struct {
		orders     *sheets.Table
		actions    *sheets.Table
		ordersErr  error
		actionsErr error
	}
	results := make([]sheetResult, len(sheetNames))

	var goalsTable *sheets.Table
	var goalsErr error

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		goalsTable, goalsErr = l.f.Fetch(ctx, l.cfg.CrmSheetID, l.cfg.CrmGoalsSheet, l.cfg.CrmGoalsRange)
	}()
	for i, name := range sheetNames {
		wg.Add(2)
		go func(i int, name string) {
			defer wg.Done()
			results[i].orders, results[i].ordersErr = l.f.Fetch(ctx, l.cfg.CrmSheetID, name, l.cfg.CrmOrdersRange)
		}(i, name)
		go func(i int, name string) {
			defer wg.Done()
			results[i].actions, results[i].actionsErr = l.f.Fetch(ctx, l.cfg.CrmSheetID, name, l.cfg.CrmActionsRange)
		}(i, name)
	}
	wg.Wait()

	ds := &models.CrmDataset{
		Goals:     map[string]models.MonthlyGoal{},
		MonthKeys: map[string]struct{}{},
	}

	for i, name := range sheetNames {
		if err := results[i].ordersErr; err != nil {
			return nil, fmt.Errorf("load CRM orders (sheet %s): %w", name, err)
		}
		orders := parseOrders(results[i].orders)
		ds.Orders = append(ds.Orders, orders...)

		monthKeys := map[string]struct{}{}
		for _, o := range orders {
			monthKeys[parse.MonthKeyOf(o.Date)] = struct{}{}
		}
		if len(monthKeys) == 0 {
			// empty tab: infer its month from the tab name ("Novembro-2025")
			if key, ok := parse.MonthKey(name); ok {
				monthKeys[key] = struct{}{}
			}
		}
		for k := range monthKeys {
			ds.MonthKeys[k] = struct{}{}
		}

		if err := results[i].actionsErr; err != nil {
			l.log.Warn("no-coupon action range unavailable", slog.String("sheet", name), slog.String("err", err.Error()))
			continue
		}
		ds.Actions = append(ds.Actions, parseActions(results[i].actions, monthKeys)...)
	}

	if goalsErr != nil {
		l.log.Warn("CRM goals range unavailable", slog.String("sheet", l.cfg.CrmGoalsSheet), slog.String("err", goalsErr.Error()))
	} else {
		ds.Goals = parseGoals(goalsTable)
	}

	sort.SliceStable(ds.Orders, func(i, j int) bool { return ds.Orders[i].Date.Before(ds.Orders[j].Date) })

	l.log.Info("CRM dataset loaded",
		slog.Int("orders", len(ds.Orders)),
		slog.Int("goals", len(ds.Goals)),
		slog.Int("actions", len(ds.Actions)),
		slog.Int("sheets", len(sheetNames)))
	return ds, nil
}

// parseOrders reads detailed order lines. Rows missing a date, an order id
// or a finite total are dropped silently; they are header or filler rows.
func parseOrders(t *sheets.Table) []models.CrmOrderRecord {
	if t == nil {
		return nil
	}
	var out []models.CrmOrderRecord
	for _, row := range t.Rows {
		date, ok := sheets.At(row, 0).Date()
		if !ok {
			continue
		}
		orderID := sheets.At(row, 1).Text()
		if orderID == "" {
			continue
		}
		total := sheets.At(row, 5).Number()
		if math.IsNaN(total) || math.IsInf(total, 0) {
			continue
		}
		channel := sheets.At(row, 6).Text()
		if channel == "" {
			channel = "Outro"
		}
		out = append(out, models.CrmOrderRecord{
			Date:          parse.Day(date),
			OrderID:       orderID,
			Email:         strings.ToLower(sheets.At(row, 2).Text()),
			Coupon:        sheets.At(row, 3).Text(),
			DiscountValue: sheets.At(row, 4).Number(),
			TotalValue:    total,
			Channel:       channel,
			IsNewCustomer: parse.NormalizeText(sheets.At(row, 7).Text()) == "SIM",
		})
	}
	return out
}

// parseGoals reads the monthly goal table: month label, revenue goal, order
// goal, order goal per day. Labels are normalized through the month-key
// cascade; rows without any positive figure are skipped.
func parseGoals(t *sheets.Table) map[string]models.MonthlyGoal {
	out := map[string]models.MonthlyGoal{}
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		labelCell := sheets.At(row, 0)
		key, ok := parse.MonthKey(labelCell.Text())
		if !ok {
			if d, dok := labelCell.Date(); dok {
				key, ok = parse.MonthKeyOf(d), true
			}
		}
		if !ok {
			continue
		}
		g := models.MonthlyGoal{MonthKey: key}
		if v := sheets.At(row, 1).Number(); v > 0 {
			g.RevenueGoal = v
		}
		if v := sheets.At(row, 2).Number(); v > 0 {
			g.OrderGoal = v
		}
		if v := sheets.At(row, 3).Number(); v > 0 {
			g.OrderGoalPerDay = v
		}
		if g.RevenueGoal <= 0 && g.OrderGoal <= 0 && g.OrderGoalPerDay <= 0 {
			continue
		}
		out[key] = g
	}
	return out
}

// parseActions reads the no-coupon action summary block. The block starts at
// a header row matching "Ação / Pedidos / Faturamento" (accent-insensitive);
// data rows follow until a blank action cell or a "---" divider, with TOTAL
// lines skipped. Rows without their own date cell are attributed to the
// first day of the sheet's month so period filtering still reaches them.
func parseActions(t *sheets.Table, monthKeys map[string]struct{}) []models.NoCouponAction {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	header := -1
	for i, row := range t.Rows {
		h0 := parse.NormalizeText(sheets.At(row, 0).Text())
		h1 := parse.NormalizeText(sheets.At(row, 1).Text())
		h2 := parse.NormalizeText(sheets.At(row, 2).Text())
		if h0 == "" && h1 == "" && h2 == "" {
			continue
		}
		if strings.Contains(h0, "ACAO") && strings.Contains(h1, "PEDIDO") &&
			(strings.Contains(h2, "FATURAMENTO") || strings.Contains(h2, "RECEITA") || strings.Contains(h2, "TOTAL")) {
			header = i
			break
		}
	}
	if header == -1 {
		return nil
	}

	fallback := actionFallbackDate(monthKeys)

	var out []models.NoCouponAction
	for _, row := range t.Rows[header+1:] {
		action := sheets.At(row, 0).Text()
		if action == "" {
			break
		}
		norm := parse.NormalizeText(action)
		if strings.HasPrefix(action, "---") || strings.HasPrefix(norm, "---") {
			break
		}
		if norm == "TOTAL" || strings.HasPrefix(norm, "TOTAL ") {
			continue
		}
		date, ok := sheets.At(row, 3).Date()
		if !ok {
			date = fallback
		}
		out = append(out, models.NoCouponAction{
			Date:    parse.Day(date),
			Action:  action,
			Orders:  sheets.At(row, 1).Number(),
			Revenue: sheets.At(row, 2).Number(),
		})
	}
	return out
}

func actionFallbackDate(monthKeys map[string]struct{}) time.Time {
	var first string
	for k := range monthKeys {
		if first == "" || k < first {
			first = k
		}
	}
	if ctx, ok := parse.ParseMonthContext(first); ok {
		return time.Date(ctx.Year, ctx.Month, 1, 0, 0, 0, 0, time.Local)
	}
	return time.Time{}
}
