package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisemkt/dashboard-api/internal/models"
	"github.com/reisemkt/dashboard-api/internal/store"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.Local)
}

func seedStore(t *testing.T, daily []models.DailyRecord, crm *models.CrmDataset) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	gen := st.Begin()
	require.True(t, st.Commit(gen, store.Snapshot{Daily: daily, Crm: crm, LoadedAt: time.Now()}))
	return st
}

func TestPreviousRange(t *testing.T) {
	// a 7-day window [10, 16] mirrors to [3, 9]
	ps, pe, ok := PreviousRange(day(time.November, 10), day(time.November, 16), time.Time{})
	require.True(t, ok)
	assert.Equal(t, day(time.November, 3), ps)
	assert.Equal(t, day(time.November, 9), pe)
}

func TestPreviousRangeSingleDay(t *testing.T) {
	ps, pe, ok := PreviousRange(day(time.November, 10), day(time.November, 10), time.Time{})
	require.True(t, ok)
	assert.Equal(t, day(time.November, 9), ps)
	assert.Equal(t, day(time.November, 9), pe)
}

func TestPreviousRangeClampsToMinDate(t *testing.T) {
	ps, pe, ok := PreviousRange(day(time.November, 10), day(time.November, 16), day(time.November, 5))
	require.True(t, ok)
	assert.Equal(t, day(time.November, 5), ps, "start is clamped to the first loaded date")
	assert.Equal(t, day(time.November, 9), pe)
}

func TestPreviousRangeDisabledWhenFullyBeforeData(t *testing.T) {
	_, _, ok := PreviousRange(day(time.November, 1), day(time.November, 7), day(time.November, 1))
	assert.False(t, ok)
}

func TestProportionalGoal(t *testing.T) {
	goals := map[string]models.MonthlyGoal{
		"2025-11": {MonthKey: "2025-11", RevenueGoal: 300000, OrderGoal: 600},
	}
	loaded := map[string]struct{}{"2025-11": {}}

	// 10 days of a 30-day month: one third of the monthly figures
	rev, orders := ProportionalGoal(goals, loaded, day(time.November, 1), day(time.November, 10))
	assert.InDelta(t, 100000.0, rev, 1e-6)
	assert.InDelta(t, 200.0, orders, 1e-6)
}

func TestProportionalGoalPrefersExplicitPerDayOrders(t *testing.T) {
	goals := map[string]models.MonthlyGoal{
		"2025-11": {MonthKey: "2025-11", RevenueGoal: 300000, OrderGoal: 600, OrderGoalPerDay: 25},
	}
	loaded := map[string]struct{}{"2025-11": {}}

	_, orders := ProportionalGoal(goals, loaded, day(time.November, 1), day(time.November, 10))
	assert.InDelta(t, 250.0, orders, 1e-6)
}

func TestProportionalGoalSkipsUnloadedMonths(t *testing.T) {
	goals := map[string]models.MonthlyGoal{
		"2025-10": {MonthKey: "2025-10", RevenueGoal: 310000},
		"2025-11": {MonthKey: "2025-11", RevenueGoal: 300000},
	}
	loaded := map[string]struct{}{"2025-11": {}}

	// window spans both months but October has no loaded CRM data
	rev, _ := ProportionalGoal(goals, loaded, day(time.October, 22), day(time.November, 10))
	assert.InDelta(t, 100000.0, rev, 1e-6, "only November days contribute")
}

func TestPeriodDefaultsToCurrentMonthClamped(t *testing.T) {
	daily := []models.DailyRecord{
		{Date: day(time.October, 5), Revenue: 1},
		{Date: day(time.November, 14), Revenue: 1},
	}
	st := seedStore(t, daily, &models.CrmDataset{})
	c := NewController(st)
	c.now = func() time.Time { return time.Date(2025, time.November, 20, 12, 0, 0, 0, time.Local) }

	s, e, ok := c.Period()
	require.True(t, ok)
	assert.Equal(t, day(time.November, 1), s)
	assert.Equal(t, day(time.November, 14), e, "end is clamped to the last loaded date")
}

func TestPeriodFallsBackToFullRange(t *testing.T) {
	daily := []models.DailyRecord{
		{Date: day(time.October, 5), Revenue: 1},
		{Date: day(time.October, 20), Revenue: 1},
	}
	st := seedStore(t, daily, &models.CrmDataset{})
	c := NewController(st)
	c.now = func() time.Time { return time.Date(2025, time.December, 2, 12, 0, 0, 0, time.Local) }

	s, e, ok := c.Period()
	require.True(t, ok)
	assert.Equal(t, day(time.October, 5), s)
	assert.Equal(t, day(time.October, 20), e)
}

func TestSetPeriodNormalizesOrder(t *testing.T) {
	st := seedStore(t, nil, &models.CrmDataset{})
	c := NewController(st)
	c.SetPeriod(day(time.November, 16), day(time.November, 10))

	s, e, ok := c.Period()
	require.True(t, ok)
	assert.Equal(t, day(time.November, 10), s)
	assert.Equal(t, day(time.November, 16), e)
}

func TestDailyReportWithComparison(t *testing.T) {
	daily := []models.DailyRecord{
		{Date: day(time.November, 3), Revenue: 500, Spend: 100, Sessions: 50, Orders: 5},
		{Date: day(time.November, 10), Revenue: 1000, Spend: 150, Sessions: 80, Orders: 8},
	}
	st := seedStore(t, daily, &models.CrmDataset{})
	c := NewController(st)
	c.SetPeriod(day(time.November, 8), day(time.November, 14))

	rep, ok := c.Daily()
	require.True(t, ok)

	assert.Equal(t, 1000.0, rep.Metrics.RevenueTotal)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, day(time.November, 3), rep.MinDate)
	assert.Equal(t, day(time.November, 10), rep.MaxDate)

	// previous window [1, 7] holds the Nov 3 row
	require.NotNil(t, rep.PreviousMetrics)
	assert.Equal(t, 500.0, rep.PreviousMetrics.RevenueTotal)

	cmp, ok := rep.Comparisons["revenueTotal"]
	require.True(t, ok)
	assert.InDelta(t, 1.0, cmp.PercentDelta, 1e-9)
	assert.Equal(t, "up", cmp.Variant)
}

func TestDailyReportWithoutSnapshot(t *testing.T) {
	c := NewController(store.NewMemoryStore())
	_, ok := c.Daily()
	assert.False(t, ok)
}

func TestCrmReportCombinesActionsAndGoal(t *testing.T) {
	crm := &models.CrmDataset{
		Orders: []models.CrmOrderRecord{
			{Date: day(time.November, 2), OrderID: "A", Email: "ana@ex.com", TotalValue: 600, DiscountValue: 60, Channel: "WhatsApp", IsNewCustomer: true},
			{Date: day(time.November, 5), OrderID: "B", Email: "bob@ex.com", TotalValue: 400, Channel: "Instagram"},
		},
		Goals: map[string]models.MonthlyGoal{
			"2025-11": {MonthKey: "2025-11", RevenueGoal: 30000},
		},
		Actions: []models.NoCouponAction{
			{Date: day(time.November, 4), Action: "Link na bio", Orders: 3, Revenue: 500},
		},
		MonthKeys: map[string]struct{}{"2025-11": {}},
	}
	st := seedStore(t, nil, crm)
	c := NewController(st)
	c.SetPeriod(day(time.November, 1), day(time.November, 10))

	rep, ok := c.Crm()
	require.True(t, ok)

	assert.Equal(t, 10, rep.Days)
	assert.Equal(t, 1000.0, rep.Metrics.RevenueTotal)
	assert.Equal(t, 60.0, rep.DiscountTotal)
	assert.Equal(t, 1500.0, rep.CombinedRevenue)
	assert.Equal(t, 5.0, rep.CombinedOrders)
	assert.InDelta(t, 300.0, rep.CombinedTicket, 1e-9)

	// 10 of 30 November days
	assert.InDelta(t, 10000.0, rep.RevenueGoal, 1e-6)
	assert.InDelta(t, 0.15, rep.GoalAttainment, 1e-6)

	require.Len(t, rep.Channels, 2)
	assert.Equal(t, "WhatsApp", rep.Channels[0].Channel)
	assert.Equal(t, 2, rep.Customers.Total)
	assert.Equal(t, 1, rep.Customers.New)
}

func TestCompareVariants(t *testing.T) {
	cur := models.PeriodMetrics{RevenueTotal: 120, SpendTotal: 90, CAC: 40}
	prev := models.PeriodMetrics{RevenueTotal: 100, SpendTotal: 100, CAC: 50}

	cmp := Compare(cur, prev)

	assert.Equal(t, "up", cmp["revenueTotal"].Variant)
	assert.InDelta(t, 0.2, cmp["revenueTotal"].PercentDelta, 1e-9)

	// spend has no polarity: a drop is neither good nor bad
	assert.Equal(t, "neutral", cmp["spendTotal"].Variant)

	// CAC fell, which is an improvement
	assert.Equal(t, "up", cmp["cac"].Variant)
	assert.InDelta(t, -0.2, cmp["cac"].PercentDelta, 1e-9)
}

func TestCompareOmitsZeroBaselines(t *testing.T) {
	cmp := Compare(models.PeriodMetrics{RevenueTotal: 100}, models.PeriodMetrics{})
	assert.NotContains(t, cmp, "revenueTotal")
	assert.Empty(t, cmp)
}
