package service

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"restaurant-ordering/internal/domain"
)

const (
	TitleNewOrder = "New Order Received! 🔔"
	TitleTest     = "Test Notification"
	iconPath      = "/logo192.png"
)

type PayloadOptions struct {
	RestaurantName string
	Currency       string
	// BaseURL is the public origin of the storefront. Web push links are
	// only attached when it is https.
	BaseURL string
}

func (p PayloadOptions) adminOrderURL(orderID string) string {
	return p.BaseURL + "/admin/orders/" + orderID
}

// OrderNotification builds the push sent to admins for a new order.
func OrderNotification(o domain.Order, opts PayloadOptions, at time.Time) Notification {
	name := o.UserName
	if name == "" {
		name = "New customer"
	}
	link := opts.adminOrderURL(o.ID)

	n := Notification{
		Title: TitleNewOrder,
		Body:  fmt.Sprintf("Order #%s - %s\nTotal: %s %.2f", o.OrderNumber, name, opts.Currency, o.TotalAmount),
		Data: map[string]string{
			"orderId":       o.ID,
			"orderNumber":   o.OrderNumber,
			"type":          "new_order",
			"totalAmount":   strconv.FormatFloat(o.TotalAmount, 'f', 2, 64),
			"items":         o.ItemsSummary(),
			"customerPhone": o.UserPhone,
			"paymentMethod": string(o.PaymentMethod),
			"timestamp":     strconv.FormatInt(at.UnixMilli(), 10),
			"click_action":  link,
		},
		Web: &WebPush{
			Icon:               iconPath,
			Badge:              iconPath,
			RequireInteraction: true,
			Actions: []WebPushAction{
				{Action: "view_order", Title: "View Order"},
				{Action: "call_customer", Title: "Call Customer"},
			},
		},
	}
	if strings.HasPrefix(opts.BaseURL, "https://") {
		n.Web.Link = link
	}
	return n
}

func TestNotification(opts PayloadOptions, at time.Time) Notification {
	return Notification{
		Title: TitleTest,
		Body:  fmt.Sprintf("Notifications for %s are working.", opts.RestaurantName),
		Data: map[string]string{
			"type":      "test",
			"timestamp": strconv.FormatInt(at.UnixMilli(), 10),
		},
		Web: &WebPush{Icon: iconPath, Badge: iconPath},
	}
}

// CallScript renders the TwiML read out on the admin phone call.
func CallScript(o domain.Order, opts PayloadOptions) string {
	say := fmt.Sprintf("New order received at %s! Order number %s. Amount: %.0f %s. Payment method: %s.",
		opts.RestaurantName, spell(o.OrderNumber), o.TotalAmount, currencyWord(opts.Currency), paymentWord(o.PaymentMethod))

	var b bytes.Buffer
	b.WriteString("<Response><Say>")
	_ = xml.EscapeText(&b, []byte(say))
	b.WriteString(`</Say><Pause length="2"/><Say>Please check your dashboard for order details.</Say></Response>`)
	return b.String()
}

// spell keeps the trailing sequence of an order number so the call does
// not read out the date.
func spell(orderNumber string) string {
	if i := strings.LastIndexByte(orderNumber, '_'); i >= 0 && i+1 < len(orderNumber) {
		if n := strings.TrimLeft(orderNumber[i+1:], "0"); n != "" {
			return n
		}
	}
	return orderNumber
}

func currencyWord(c string) string {
	if strings.EqualFold(c, "INR") {
		return "rupees"
	}
	return c
}

func paymentWord(m domain.PaymentMethod) string {
	if m == domain.PaymentCOD {
		return "cash on delivery"
	}
	return "paid online"
}
