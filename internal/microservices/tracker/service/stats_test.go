package service

import (
	"testing"
	"time"

	"restaurant-ordering/internal/domain"
)

func TestComputeStatsWindows(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 6, 15, 14, 0, 0, 0, loc)
	at := func(daysAgo, hour int) time.Time {
		return time.Date(2024, 6, 15-daysAgo, hour, 0, 0, 0, loc)
	}
	orders := []domain.Order{
		{PaymentMethod: domain.PaymentCOD, PaymentStatus: domain.PaymentPending, Status: domain.StatusCompleted, TotalAmount: 380, CreatedAt: at(0, 9)},
		{PaymentMethod: domain.PaymentOnline, PaymentStatus: domain.PaymentSuccess, Status: domain.StatusConfirmed, TotalAmount: 200, CreatedAt: at(0, 12)},
		{PaymentMethod: domain.PaymentOnline, PaymentStatus: domain.PaymentFailed, TotalAmount: 999, CreatedAt: at(0, 13)},
		{PaymentMethod: domain.PaymentOnline, PaymentStatus: domain.PaymentSuccess, Status: domain.StatusCompleted, TotalAmount: 150, CreatedAt: at(3, 20)},
		{PaymentMethod: domain.PaymentCOD, PaymentStatus: domain.PaymentPending, TotalAmount: 100, CreatedAt: at(20, 20)},
		{PaymentMethod: domain.PaymentCOD, PaymentStatus: domain.PaymentPending, TotalAmount: 70, CreatedAt: at(45, 20)},
	}

	st := ComputeStats(orders, now, loc)

	if st.Daily.Total != 2 || st.Daily.Revenue != 580 || st.Daily.Completed != 1 {
		t.Errorf("daily = %+v", st.Daily)
	}
	if st.Daily.CODOrders != 1 || st.Daily.OnlineOrders != 1 || st.Daily.CODRevenue != 380 || st.Daily.OnlineRevenue != 200 {
		t.Errorf("daily split = %+v", st.Daily)
	}
	if len(st.Daily.Series) != 1 || st.Daily.Series[0].Date != "2024-06-15" || st.Daily.Series[0].Orders != 2 {
		t.Errorf("daily series = %+v", st.Daily.Series)
	}
	if st.Weekly.Total != 3 || st.Weekly.Revenue != 730 || st.Weekly.Completed != 2 {
		t.Errorf("weekly = %+v", st.Weekly)
	}
	if st.Monthly.Total != 4 || st.Monthly.Revenue != 830 {
		t.Errorf("monthly = %+v", st.Monthly)
	}
	series := st.Monthly.Series
	for i := 1; i < len(series); i++ {
		if series[i-1].Date >= series[i].Date {
			t.Fatalf("series not sorted: %+v", series)
		}
	}
	if !st.Daily.From.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("daily from = %v", st.Daily.From)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil, time.Now(), time.UTC)
	if st.Monthly.Total != 0 || st.Monthly.Series == nil {
		t.Fatalf("empty stats = %+v", st.Monthly)
	}
}
