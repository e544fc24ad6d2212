// Package metrics derives period KPIs from row collections. Every function
// here is pure and total: empty input yields an all-zero result and every
// ratio resolves to 0 when its denominator is 0.
package metrics

import (
	"github.com/reisemkt/dashboard-api/internal/models"
)

// AggregateDaily computes the KPI set of a daily row subset.
func AggregateDaily(rows []models.DailyRecord) models.PeriodMetrics {
	var m models.PeriodMetrics
	for _, r := range rows {
		m.RevenueTotal += r.Revenue
		m.SpendTotal += r.Spend
		m.SessionsTotal += r.Sessions
		m.OrdersTotal += r.Orders
		m.NewCustomersTotal += r.NewCustomers
		m.GoalTotal += r.DailyGoal
	}
	deriveRatios(&m)
	m.GoalAttainment = safeDiv(m.RevenueTotal, m.GoalTotal)
	m.GoalDelta = m.RevenueTotal - m.GoalTotal
	return m
}

// AggregateCrm computes the KPI set of a CRM order subset. Orders are
// counted as distinct order ids; a customer counts as new only when every
// order of that email in the subset is flagged new. The CRM period goal is
// not summed from rows, it comes from the proportional monthly allocation.
func AggregateCrm(rows []models.CrmOrderRecord) models.PeriodMetrics {
	var m models.PeriodMetrics
	orderIDs := map[string]struct{}{}
	allNew := map[string]bool{}
	for _, r := range rows {
		m.RevenueTotal += r.TotalValue
		orderIDs[r.OrderID] = struct{}{}
		if r.Email != "" {
			if seen, ok := allNew[r.Email]; ok {
				allNew[r.Email] = seen && r.IsNewCustomer
			} else {
				allNew[r.Email] = r.IsNewCustomer
			}
		}
	}
	m.OrdersTotal = len(orderIDs)
	for _, isNew := range allNew {
		if isNew {
			m.NewCustomersTotal++
		}
	}
	deriveRatios(&m)
	return m
}

func deriveRatios(m *models.PeriodMetrics) {
	m.RecurringCustomers = maxInt(0, m.OrdersTotal-m.NewCustomersTotal)
	m.AverageTicket = safeDiv(m.RevenueTotal, float64(m.OrdersTotal))
	m.ConversionRate = safeDiv(float64(m.OrdersTotal), float64(m.SessionsTotal))
	m.CostPerSession = safeDiv(m.SpendTotal, float64(m.SessionsTotal))
	m.CAC = safeDiv(m.SpendTotal, float64(m.NewCustomersTotal))
	m.MarketingCostPct = safeDiv(m.SpendTotal, m.RevenueTotal)
	m.ROAS = safeDiv(m.RevenueTotal, m.SpendTotal)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
