// Package payment talks to the Razorpay checkout API.
package payment

import (
	"context"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"restaurant-ordering/internal/config"
)

// GatewayOrder is the server-side half of a checkout: the browser opens the
// overlay with ID and the public key.
type GatewayOrder struct {
	ID       string
	Amount   int64 // minor units
	Currency string
}

type Razorpay struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpay(cfg config.RazorpayConfig) *Razorpay {
	return &Razorpay{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:  cfg.KeyID,
		secret: cfg.KeySecret,
	}
}

func (r *Razorpay) KeyID() string { return r.keyID }

// ToMinor converts a rupee amount into paise.
func ToMinor(amount float64) int64 { return int64(math.Round(amount * 100)) }

// CreateOrder registers a payable order with the gateway. The SDK has no
// context support, so ctx is only checked before the call.
func (r *Razorpay) CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return GatewayOrder{}, err
	}
	minor := ToMinor(amount)
	data := map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return GatewayOrder{}, fmt.Errorf("razorpay create order: response has no id")
	}
	return GatewayOrder{ID: id, Amount: minor, Currency: currency}, nil
}

// VerifySignature checks the checkout handler's signature over
// "<order_id>|<payment_id>".
func (r *Razorpay) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, r.secret)
}
