package dto

import "restaurant-ordering/internal/domain"

type CheckoutRequest struct {
	PaymentMethod     domain.PaymentMethod `json:"payment_method"`
	Address           *domain.Address      `json:"address,omitempty"`
	UseProfileAddress bool                 `json:"use_profile_address"`
	Phone             string               `json:"phone,omitempty"`
}

// PaymentSession is what the browser needs to open the gateway checkout.
type PaymentSession struct {
	KeyID          string  `json:"key_id"`
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Prefill        Prefill `json:"prefill"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type CheckoutResponse struct {
	Order   domain.Order    `json:"order"`
	Payment *PaymentSession `json:"payment,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentID      string `json:"razorpay_payment_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	Signature      string `json:"razorpay_signature"`
}

type StatusUpdateRequest struct {
	Status domain.OrderStatus `json:"status"`
	Notes  string             `json:"notes,omitempty"`
}
