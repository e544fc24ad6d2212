package period

import (
	"github.com/reisemkt/dashboard-api/internal/models"
)

type polarity int

const (
	higherIsBetter polarity = iota
	lowerIsBetter
	noPolarity
)

// Direction sense per metric: for cost metrics a drop is an improvement,
// and media spend by itself is neither good nor bad.
var metricPolarity = map[string]polarity{
	"revenueTotal":       higherIsBetter,
	"spendTotal":         noPolarity,
	"sessionsTotal":      higherIsBetter,
	"ordersTotal":        higherIsBetter,
	"newCustomersTotal":  higherIsBetter,
	"recurringCustomers": higherIsBetter,
	"averageTicket":      higherIsBetter,
	"conversionRate":     higherIsBetter,
	"costPerSession":     lowerIsBetter,
	"cac":                lowerIsBetter,
	"marketingCostPct":   lowerIsBetter,
	"roas":               higherIsBetter,
	"goalAttainment":     higherIsBetter,
}

// Compare builds the per-metric comparison map between a current and a
// previous PeriodMetrics. Metrics whose previous value is 0 are omitted:
// a delta against zero is meaningless, not infinite.
func Compare(current, previous models.PeriodMetrics) map[string]models.Comparison {
	out := map[string]models.Comparison{}
	add := func(key string, cur, prev float64) {
		if prev == 0 {
			return
		}
		delta := cur/prev - 1
		out[key] = models.Comparison{
			Variant:      variantFor(key, delta),
			PercentDelta: delta,
		}
	}
	add("revenueTotal", current.RevenueTotal, previous.RevenueTotal)
	add("spendTotal", current.SpendTotal, previous.SpendTotal)
	add("sessionsTotal", float64(current.SessionsTotal), float64(previous.SessionsTotal))
	add("ordersTotal", float64(current.OrdersTotal), float64(previous.OrdersTotal))
	add("newCustomersTotal", float64(current.NewCustomersTotal), float64(previous.NewCustomersTotal))
	add("recurringCustomers", float64(current.RecurringCustomers), float64(previous.RecurringCustomers))
	add("averageTicket", current.AverageTicket, previous.AverageTicket)
	add("conversionRate", current.ConversionRate, previous.ConversionRate)
	add("costPerSession", current.CostPerSession, previous.CostPerSession)
	add("cac", current.CAC, previous.CAC)
	add("marketingCostPct", current.MarketingCostPct, previous.MarketingCostPct)
	add("roas", current.ROAS, previous.ROAS)
	add("goalAttainment", current.GoalAttainment, previous.GoalAttainment)
	return out
}

func variantFor(key string, delta float64) string {
	pol, ok := metricPolarity[key]
	if !ok || pol == noPolarity || delta == 0 {
		return "neutral"
	}
	improved := delta > 0
	if pol == lowerIsBetter {
		improved = !improved
	}
	if improved {
		return "up"
	}
	return "down"
}
