package domain

import "time"

// RoutingKeyOrderPlaced is published once an order is ready for the
// kitchen: immediately for cash on delivery, after payment for online.
const RoutingKeyOrderPlaced = "order.placed"

type OrderPlacedEvent struct {
	OrderID       string        `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	CustomerName  string        `json:"customer_name"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PlacedAt      time.Time     `json:"placed_at"`
}

func NewOrderPlacedEvent(o Order, at time.Time) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.UserName,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		PlacedAt:      at.UTC(),
	}
}
