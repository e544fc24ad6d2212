package metrics

import (
	"sort"
	"time"

	"github.com/reisemkt/dashboard-api/internal/models"
	"github.com/reisemkt/dashboard-api/internal/parse"
)

// SummarizeChannels breaks CRM orders down by sales channel, sorted by
// revenue descending.
func SummarizeChannels(rows []models.CrmOrderRecord) []models.ChannelSummary {
	var revenueTotal float64
	byChannel := map[string]*models.ChannelSummary{}
	for _, r := range rows {
		revenueTotal += r.TotalValue
		c, ok := byChannel[r.Channel]
		if !ok {
			c = &models.ChannelSummary{Channel: r.Channel}
			byChannel[r.Channel] = c
		}
		c.Orders++
		c.Revenue += r.TotalValue
		c.Discount += r.DiscountValue
	}
	out := make([]models.ChannelSummary, 0, len(byChannel))
	for _, c := range byChannel {
		c.Ticket = safeDiv(c.Revenue, float64(c.Orders))
		c.RevenueShare = safeDiv(c.Revenue, revenueTotal)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// SummarizeCoupons breaks CRM orders down by coupon code; orders without a
// coupon fall into the "Sem cupom" bucket.
func SummarizeCoupons(rows []models.CrmOrderRecord) []models.CouponSummary {
	var revenueTotal float64
	byCoupon := map[string]*models.CouponSummary{}
	for _, r := range rows {
		revenueTotal += r.TotalValue
		key := r.Coupon
		if key == "" {
			key = "Sem cupom"
		}
		c, ok := byCoupon[key]
		if !ok {
			c = &models.CouponSummary{Coupon: key}
			byCoupon[key] = c
		}
		c.Orders++
		c.Revenue += r.TotalValue
		c.Discount += r.DiscountValue
	}
	out := make([]models.CouponSummary, 0, len(byCoupon))
	for _, c := range byCoupon {
		c.Ticket = safeDiv(c.Revenue, float64(c.Orders))
		c.RevenueShare = safeDiv(c.Revenue, revenueTotal)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Coupon < out[j].Coupon
	})
	return out
}

// SummarizeDays groups CRM orders per calendar day, ascending.
func SummarizeDays(rows []models.CrmOrderRecord) []models.DaySummary {
	byDay := map[string]*models.DaySummary{}
	for _, r := range rows {
		day := parse.Day(r.Date)
		key := day.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &models.DaySummary{Date: day}
			byDay[key] = d
		}
		d.Orders++
		d.Revenue += r.TotalValue
		d.Discount += r.DiscountValue
	}
	out := make([]models.DaySummary, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SummarizeWeekdays groups CRM orders by weekday, Sunday first.
func SummarizeWeekdays(rows []models.CrmOrderRecord) []models.WeekdaySummary {
	byDay := map[time.Weekday]*models.WeekdaySummary{}
	for _, r := range rows {
		w := r.Date.Weekday()
		d, ok := byDay[w]
		if !ok {
			d = &models.WeekdaySummary{Weekday: w}
			byDay[w] = d
		}
		d.Orders++
		d.Revenue += r.TotalValue
	}
	out := make([]models.WeekdaySummary, 0, len(byDay))
	for _, d := range byDay {
		d.Ticket = safeDiv(d.Revenue, float64(d.Orders))
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out
}

// SummarizeCustomers counts unique customers by email. A customer is new
// only when every one of their orders in the subset is flagged new.
func SummarizeCustomers(rows []models.CrmOrderRecord) models.CustomerSummary {
	allNew := map[string]bool{}
	for _, r := range rows {
		if r.Email == "" {
			continue
		}
		if seen, ok := allNew[r.Email]; ok {
			allNew[r.Email] = seen && r.IsNewCustomer
		} else {
			allNew[r.Email] = r.IsNewCustomer
		}
	}
	var s models.CustomerSummary
	for _, isNew := range allNew {
		if isNew {
			s.New++
		} else {
			s.Recurring++
		}
	}
	s.Total = len(allNew)
	return s
}

// SummarizeChannelCustomers counts unique customers per channel, sorted by
// total customers descending.
func SummarizeChannelCustomers(rows []models.CrmOrderRecord) []models.ChannelCustomerSummary {
	type sets struct {
		newEmails map[string]struct{}
		recEmails map[string]struct{}
	}
	byChannel := map[string]*sets{}
	for _, r := range rows {
		if r.Email == "" {
			continue
		}
		s, ok := byChannel[r.Channel]
		if !ok {
			s = &sets{newEmails: map[string]struct{}{}, recEmails: map[string]struct{}{}}
			byChannel[r.Channel] = s
		}
		if r.IsNewCustomer {
			s.newEmails[r.Email] = struct{}{}
		} else {
			s.recEmails[r.Email] = struct{}{}
		}
	}
	out := make([]models.ChannelCustomerSummary, 0, len(byChannel))
	for channel, s := range byChannel {
		n, rec := len(s.newEmails), len(s.recEmails)
		total := n + rec
		if total == 0 {
			continue
		}
		out = append(out, models.ChannelCustomerSummary{
			Channel:   channel,
			New:       n,
			Recurring: rec,
			Total:     total,
			NewShare:  safeDiv(float64(n), float64(total)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// SummarizeActions aggregates no-coupon actions dated inside [start, end]
// by their accent-insensitive uppercased label, sorted by revenue
// descending. It also returns the period totals.
func SummarizeActions(actions []models.NoCouponAction, start, end time.Time) ([]models.ActionSummary, float64, float64) {
	startDay, endDay := parse.Day(start), parse.Day(end)
	byLabel := map[string]*models.ActionSummary{}
	var totalOrders, totalRevenue float64
	for _, a := range actions {
		if a.Date.IsZero() {
			continue
		}
		day := parse.Day(a.Date)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		key := parse.NormalizeText(a.Action)
		s, ok := byLabel[key]
		if !ok {
			s = &models.ActionSummary{Action: a.Action}
			byLabel[key] = s
		}
		s.Orders += a.Orders
		s.Revenue += a.Revenue
		totalOrders += a.Orders
		totalRevenue += a.Revenue
	}
	out := make([]models.ActionSummary, 0, len(byLabel))
	for _, s := range byLabel {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Action < out[j].Action
	})
	return out, totalOrders, totalRevenue
}
