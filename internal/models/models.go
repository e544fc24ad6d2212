package models

import "time"

// DailyRecord is one calendar day of site performance taken from a
// month sheet of the daily results spreadsheet. Records are built once
// during load and never mutated afterwards.
type DailyRecord struct {
	Date         time.Time `json:"date"`
	MonthID      string    `json:"monthId"` // "YYYY-MM" of the source sheet
	MonthLabel   string    `json:"monthLabel"`
	Revenue      float64   `json:"revenue"`
	DailyGoal    float64   `json:"dailyGoal"`
	Sessions     int       `json:"sessions"`
	Orders       int       `json:"orders"`
	Spend        float64   `json:"spend"`
	NewCustomers int       `json:"newCustomers"`

	// Reference figures computed inside the spreadsheet itself. Kept as-is
	// so per-row views can show exactly what the sheet shows.
	SheetCAC      float64 `json:"sheetCac"`
	SheetTicket   float64 `json:"sheetTicket"`
	SheetConvRate float64 `json:"sheetConvRate"`
	SheetCPS      float64 `json:"sheetCps"`
	SheetMktPct   float64 `json:"sheetMktPct"`
}

// CrmOrderRecord is one order line from a CRM sheet.
type CrmOrderRecord struct {
	Date          time.Time `json:"date"`
	OrderID       string    `json:"orderId"`
	Email         string    `json:"email"`
	Coupon        string    `json:"coupon"`
	DiscountValue float64   `json:"discountValue"`
	TotalValue    float64   `json:"totalValue"`
	Channel       string    `json:"channel"`
	IsNewCustomer bool      `json:"isNewCustomer"`
}

// MonthlyGoal holds the targets of one calendar month, keyed by "YYYY-MM".
type MonthlyGoal struct {
	MonthKey        string  `json:"monthKey"`
	RevenueGoal     float64 `json:"revenueGoal"`
	OrderGoal       float64 `json:"orderGoal"`
	OrderGoalPerDay float64 `json:"orderGoalPerDay"`
}

// NoCouponAction is revenue/order attribution for a named campaign action
// that has no discount coupon, as read from the summary block of a CRM sheet.
type NoCouponAction struct {
	Date    time.Time `json:"date"`
	Action  string    `json:"action"`
	Orders  float64   `json:"orders"`
	Revenue float64   `json:"revenue"`
}

// CrmDataset is everything the CRM loader produces for one load cycle.
// MonthKeys records which calendar months ("YYYY-MM") actually had CRM data,
// either from order dates or inferred from a sheet name.
type CrmDataset struct {
	Orders    []CrmOrderRecord       `json:"orders"`
	Goals     map[string]MonthlyGoal `json:"goals"`
	Actions   []NoCouponAction       `json:"actions"`
	MonthKeys map[string]struct{}    `json:"-"`
}

// PeriodMetrics is the flat KPI record for one period. It is always derived
// from a row set, never mutated in place; every ratio resolves to 0 when its
// denominator is 0.
type PeriodMetrics struct {
	RevenueTotal       float64 `json:"revenueTotal"`
	SpendTotal         float64 `json:"spendTotal"`
	SessionsTotal      int     `json:"sessionsTotal"`
	OrdersTotal        int     `json:"ordersTotal"`
	NewCustomersTotal  int     `json:"newCustomersTotal"`
	RecurringCustomers int     `json:"recurringCustomers"`
	AverageTicket      float64 `json:"averageTicket"`
	ConversionRate     float64 `json:"conversionRate"`
	CostPerSession     float64 `json:"costPerSession"`
	CAC                float64 `json:"cac"`
	MarketingCostPct   float64 `json:"marketingCostPct"`
	ROAS               float64 `json:"roas"`
	GoalTotal          float64 `json:"goalTotal"`
	GoalAttainment     float64 `json:"goalAttainment"`
	GoalDelta          float64 `json:"goalDelta"`
}

// Comparison describes how a metric moved against the previous period.
// Variant is "up" when the movement is an improvement for that metric,
// "down" when it is a regression and "neutral" when the metric carries no
// better/worse sense (media spend) or did not move.
type Comparison struct {
	Variant      string  `json:"variant"`
	PercentDelta float64 `json:"percentDelta"`
}

// ChannelSummary aggregates CRM orders of one sales channel.
type ChannelSummary struct {
	Channel      string  `json:"channel"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
	Discount     float64 `json:"discount"`
	Ticket       float64 `json:"ticket"`
	RevenueShare float64 `json:"revenueShare"`
}

// CouponSummary aggregates CRM orders of one coupon code.
type CouponSummary struct {
	Coupon       string  `json:"coupon"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
	Discount     float64 `json:"discount"`
	Ticket       float64 `json:"ticket"`
	RevenueShare float64 `json:"revenueShare"`
}

// DaySummary aggregates CRM orders of one calendar day.
type DaySummary struct {
	Date     time.Time `json:"date"`
	Orders   int       `json:"orders"`
	Revenue  float64   `json:"revenue"`
	Discount float64   `json:"discount"`
}

// WeekdaySummary aggregates CRM orders by weekday (Sunday = 0).
type WeekdaySummary struct {
	Weekday time.Weekday `json:"weekday"`
	Orders  int          `json:"orders"`
	Revenue float64      `json:"revenue"`
	Ticket  float64      `json:"ticket"`
}

// CustomerSummary counts unique customers in a period. A customer is new
// only when every order of that customer inside the period is flagged new.
type CustomerSummary struct {
	New       int `json:"new"`
	Recurring int `json:"recurring"`
	Total     int `json:"total"`
}

// ChannelCustomerSummary counts unique customers per channel.
type ChannelCustomerSummary struct {
	Channel   string  `json:"channel"`
	New       int     `json:"new"`
	Recurring int     `json:"recurring"`
	Total     int     `json:"total"`
	NewShare  float64 `json:"newShare"`
}

// ActionSummary aggregates no-coupon actions by action label.
type ActionSummary struct {
	Action  string  `json:"action"`
	Orders  float64 `json:"orders"`
	Revenue float64 `json:"revenue"`
}
