package service

import (
	"sort"
	"time"

	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/tracker/models"
)

// Midnight is the start of t's day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ComputeStats buckets countable orders into the daily, weekly and
// monthly windows ending at now.
func ComputeStats(orders []domain.Order, now time.Time, loc *time.Location) models.Stats {
	day := Midnight(now, loc)
	return models.Stats{
		Daily:   window(orders, day, loc),
		Weekly:  window(orders, day.AddDate(0, 0, -7), loc),
		Monthly: window(orders, day.AddDate(0, 0, -30), loc),
	}
}

func window(orders []domain.Order, from time.Time, loc *time.Location) models.WindowStats {
	w := models.WindowStats{From: from, Series: []models.DayPoint{}}
	byDay := map[string]*models.DayPoint{}
	for _, o := range orders {
		if !o.Countable() || o.CreatedAt.Before(from) {
			continue
		}
		w.Total++
		w.Revenue += o.TotalAmount
		if o.Status == domain.StatusCompleted {
			w.Completed++
		}
		switch o.PaymentMethod {
		case domain.PaymentCOD:
			w.CODOrders++
			w.CODRevenue += o.TotalAmount
		case domain.PaymentOnline:
			w.OnlineOrders++
			w.OnlineRevenue += o.TotalAmount
		}

		key := o.CreatedAt.In(loc).Format("2006-01-02")
		p, ok := byDay[key]
		if !ok {
			p = &models.DayPoint{Date: key}
			byDay[key] = p
		}
		p.Orders++
		p.Amount += o.TotalAmount
	}
	for _, p := range byDay {
		w.Series = append(w.Series, *p)
	}
	sort.Slice(w.Series, func(i, j int) bool { return w.Series[i].Date < w.Series[j].Date })
	return w
}
