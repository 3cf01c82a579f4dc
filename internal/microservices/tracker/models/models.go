package models

import (
	"time"

	"restaurant-ordering/internal/domain"
)

// View selects one of the admin order listings.
type View string

const (
	ViewToday     View = "today"
	ViewPast      View = "past"
	ViewCompleted View = "completed"
	ViewAll       View = "all"
)

func (v View) Valid() bool {
	switch v {
	case ViewToday, ViewPast, ViewCompleted, ViewAll:
		return true
	}
	return false
}

type OrderList struct {
	View   View           `json:"view"`
	Count  int            `json:"count"`
	Orders []domain.Order `json:"orders"`
}

type DayPoint struct {
	Date   string  `json:"date"`
	Orders int     `json:"orders"`
	Amount float64 `json:"amount"`
}

type WindowStats struct {
	From          time.Time  `json:"from"`
	Total         int        `json:"total"`
	Completed     int        `json:"completed"`
	CODOrders     int        `json:"cod_orders"`
	OnlineOrders  int        `json:"online_orders"`
	Revenue       float64    `json:"revenue"`
	CODRevenue    float64    `json:"cod_revenue"`
	OnlineRevenue float64    `json:"online_revenue"`
	Series        []DayPoint `json:"series"`
}

type Stats struct {
	Daily   WindowStats `json:"daily"`
	Weekly  WindowStats `json:"weekly"`
	Monthly WindowStats `json:"monthly"`
}
