// Package period owns the selected date range, derives the symmetric
// previous period and re-filters both datasets on every change. It owns
// only the [start, end] window; the underlying row arrays belong to the
// store and are never mutated here.
package period

import (
	"sync"
	"time"

	"github.com/reisemkt/dashboard-api/internal/metrics"
	"github.com/reisemkt/dashboard-api/internal/models"
	"github.com/reisemkt/dashboard-api/internal/parse"
	"github.com/reisemkt/dashboard-api/internal/store"
)

// Controller maintains the selected date range over the store's snapshot.
type Controller struct {
	st  *store.MemoryStore
	now func() time.Time

	mu         sync.Mutex
	start, end time.Time
}

func NewController(st *store.MemoryStore) *Controller {
	return &Controller{st: st, now: time.Now}
}

// SetPeriod selects a new date range. The pair is order-normalized and
// truncated to day granularity, so reversed input and single-day ranges are
// both valid.
func (c *Controller) SetPeriod(start, end time.Time) {
	start, end = parse.Day(start), parse.Day(end)
	if end.Before(start) {
		start, end = end, start
	}
	c.mu.Lock()
	c.start, c.end = start, end
	c.mu.Unlock()
}

// Period returns the selected range, falling back to the default period of
// the loaded data when none was selected yet: the current calendar month
// clamped to the available dates, or the full range when the current month
// has no data.
func (c *Controller) Period() (time.Time, time.Time, bool) {
	c.mu.Lock()
	start, end := c.start, c.end
	c.mu.Unlock()
	if !start.IsZero() && !end.IsZero() {
		return start, end, true
	}

	snap, ok := c.st.Snapshot()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	minDate, maxDate := dataBounds(snap)
	if minDate.IsZero() {
		return time.Time{}, time.Time{}, false
	}

	today := parse.Day(c.now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local)
	s, e := maxTime(monthStart, minDate), minTime(today, maxDate)
	if s.After(e) {
		s, e = minDate, maxDate
	}
	return s, e, true
}

// DailyReport is the daily-dataset view of a period.
type DailyReport struct {
	Start            time.Time                    `json:"start"`
	End              time.Time                    `json:"end"`
	Metrics          models.PeriodMetrics         `json:"metrics"`
	PreviousMetrics  *models.PeriodMetrics        `json:"previousMetrics"`
	Comparisons      map[string]models.Comparison `json:"comparisons"`
	Rows             []models.DailyRecord         `json:"rows"`
	MinDate          time.Time                    `json:"minDate"`
	MaxDate          time.Time                    `json:"maxDate"`
}

// CrmReport is the CRM-dataset view of a period.
type CrmReport struct {
	Start           time.Time                    `json:"start"`
	End             time.Time                    `json:"end"`
	Days            int                          `json:"days"`
	Metrics         models.PeriodMetrics         `json:"metrics"`
	PreviousMetrics *models.PeriodMetrics        `json:"previousMetrics"`
	Comparisons     map[string]models.Comparison `json:"comparisons"`

	DiscountTotal float64 `json:"discountTotal"`

	Channels         []models.ChannelSummary         `json:"channels"`
	Coupons          []models.CouponSummary          `json:"coupons"`
	Daily            []models.DaySummary             `json:"daily"`
	PreviousDaily    []models.DaySummary             `json:"previousDaily"`
	Weekdays         []models.WeekdaySummary         `json:"weekdays"`
	Customers        models.CustomerSummary          `json:"customers"`
	ChannelCustomers []models.ChannelCustomerSummary `json:"channelCustomers"`

	Actions       []models.ActionSummary `json:"actions"`
	ActionOrders  float64                `json:"actionOrders"`
	ActionRevenue float64                `json:"actionRevenue"`

	// Combined figures: detailed coupon orders plus no-coupon actions.
	CombinedRevenue float64 `json:"combinedRevenue"`
	CombinedOrders  float64 `json:"combinedOrders"`
	CombinedTicket  float64 `json:"combinedTicket"`

	// Proportional monthly goal allocation over the period; zero when no
	// loaded month has a goal.
	RevenueGoal    float64 `json:"revenueGoal"`
	OrderGoal      float64 `json:"orderGoal"`
	GoalAttainment float64 `json:"goalAttainment"`

	MinDate time.Time `json:"minDate"`
	MaxDate time.Time `json:"maxDate"`
}

// Daily computes the daily-dataset report for the selected period.
func (c *Controller) Daily() (DailyReport, bool) {
	snap, ok := c.st.Snapshot()
	if !ok {
		return DailyReport{}, false
	}
	start, end, ok := c.Period()
	if !ok {
		return DailyReport{}, false
	}

	rows := filterDaily(snap.Daily, start, end)
	m := metrics.AggregateDaily(rows)

	rep := DailyReport{
		Start:       start,
		End:         end,
		Metrics:     m,
		Rows:        rows,
		Comparisons: map[string]models.Comparison{},
	}
	if len(snap.Daily) > 0 {
		rep.MinDate = parse.Day(snap.Daily[0].Date)
		rep.MaxDate = parse.Day(snap.Daily[len(snap.Daily)-1].Date)
	}

	if ps, pe, ok := PreviousRange(start, end, rep.MinDate); ok {
		prevRows := filterDaily(snap.Daily, ps, pe)
		if len(prevRows) > 0 {
			pm := metrics.AggregateDaily(prevRows)
			rep.PreviousMetrics = &pm
			rep.Comparisons = Compare(m, pm)
		}
	}
	return rep, true
}

// Crm computes the CRM report for the selected period.
func (c *Controller) Crm() (CrmReport, bool) {
	snap, ok := c.st.Snapshot()
	if !ok || snap.Crm == nil {
		return CrmReport{}, false
	}
	start, end, ok := c.Period()
	if !ok {
		return CrmReport{}, false
	}
	crm := snap.Crm

	rows := filterCrm(crm.Orders, start, end)
	m := metrics.AggregateCrm(rows)

	rep := CrmReport{
		Start:            start,
		End:              end,
		Days:             dayCount(start, end),
		Metrics:          m,
		Comparisons:      map[string]models.Comparison{},
		Channels:         metrics.SummarizeChannels(rows),
		Coupons:          metrics.SummarizeCoupons(rows),
		Daily:            metrics.SummarizeDays(rows),
		Weekdays:         metrics.SummarizeWeekdays(rows),
		Customers:        metrics.SummarizeCustomers(rows),
		ChannelCustomers: metrics.SummarizeChannelCustomers(rows),
	}
	for _, r := range rows {
		rep.DiscountTotal += r.DiscountValue
	}
	if len(crm.Orders) > 0 {
		rep.MinDate = parse.Day(crm.Orders[0].Date)
		rep.MaxDate = parse.Day(crm.Orders[len(crm.Orders)-1].Date)
	}

	rep.Actions, rep.ActionOrders, rep.ActionRevenue = metrics.SummarizeActions(crm.Actions, start, end)
	rep.CombinedRevenue = m.RevenueTotal + rep.ActionRevenue
	rep.CombinedOrders = float64(m.OrdersTotal) + rep.ActionOrders
	if rep.CombinedOrders > 0 {
		rep.CombinedTicket = rep.CombinedRevenue / rep.CombinedOrders
	}

	rep.RevenueGoal, rep.OrderGoal = ProportionalGoal(crm.Goals, crm.MonthKeys, start, end)
	if rep.RevenueGoal > 0 {
		rep.GoalAttainment = rep.CombinedRevenue / rep.RevenueGoal
	}

	if ps, pe, ok := PreviousRange(start, end, rep.MinDate); ok {
		prevRows := filterCrm(crm.Orders, ps, pe)
		if len(prevRows) > 0 {
			pm := metrics.AggregateCrm(prevRows)
			rep.PreviousMetrics = &pm
			rep.Comparisons = Compare(m, pm)
			rep.PreviousDaily = metrics.SummarizeDays(prevRows)
		}
	}
	return rep, true
}

// PreviousRange derives the period of the same day count immediately before
// [start, end], clamped so it never precedes min. When the whole previous
// period falls before min, comparison is disabled (ok=false) rather than
// showing a misleading partial window.
func PreviousRange(start, end, min time.Time) (time.Time, time.Time, bool) {
	start, end = parse.Day(start), parse.Day(end)
	days := dayCount(start, end)
	if days <= 0 {
		return time.Time{}, time.Time{}, false
	}
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))
	if !min.IsZero() {
		if prevEnd.Before(min) {
			return time.Time{}, time.Time{}, false
		}
		if prevStart.Before(min) {
			prevStart = min
		}
	}
	return prevStart, prevEnd, true
}

// ProportionalGoal allocates each month's goal evenly across its calendar
// days and sums the allocation over every day of [start, end], restricted
// to months that actually have loaded CRM data. The per-day order goal
// prefers an explicit per-day figure over orderGoal/daysInMonth.
func ProportionalGoal(goals map[string]models.MonthlyGoal, loaded map[string]struct{}, start, end time.Time) (revenueGoal, orderGoal float64) {
	start, end = parse.Day(start), parse.Day(end)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := parse.MonthKeyOf(d)
		if loaded != nil {
			if _, ok := loaded[key]; !ok {
				continue
			}
		}
		g, ok := goals[key]
		if !ok {
			continue
		}
		dim := float64(parse.DaysInMonth(d.Year(), d.Month()))
		if g.RevenueGoal > 0 {
			revenueGoal += g.RevenueGoal / dim
		}
		switch {
		case g.OrderGoalPerDay > 0:
			orderGoal += g.OrderGoalPerDay
		case g.OrderGoal > 0:
			orderGoal += g.OrderGoal / dim
		}
	}
	return revenueGoal, orderGoal
}

func filterDaily(rows []models.DailyRecord, start, end time.Time) []models.DailyRecord {
	var out []models.DailyRecord
	for _, r := range rows {
		d := parse.Day(r.Date)
		if !d.Before(start) && !d.After(end) {
			out = append(out, r)
		}
	}
	return out
}

func filterCrm(rows []models.CrmOrderRecord, start, end time.Time) []models.CrmOrderRecord {
	var out []models.CrmOrderRecord
	for _, r := range rows {
		d := parse.Day(r.Date)
		if !d.Before(start) && !d.After(end) {
			out = append(out, r)
		}
	}
	return out
}

func dayCount(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24+0.5) + 1
}

func dataBounds(snap store.Snapshot) (time.Time, time.Time) {
	var min, max time.Time
	if len(snap.Daily) > 0 {
		min = parse.Day(snap.Daily[0].Date)
		max = parse.Day(snap.Daily[len(snap.Daily)-1].Date)
	}
	if snap.Crm != nil && len(snap.Crm.Orders) > 0 {
		cmin := parse.Day(snap.Crm.Orders[0].Date)
		cmax := parse.Day(snap.Crm.Orders[len(snap.Crm.Orders)-1].Date)
		if min.IsZero() || cmin.Before(min) {
			min = cmin
		}
		if max.IsZero() || cmax.After(max) {
			max = cmax
		}
	}
	return min, max
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
