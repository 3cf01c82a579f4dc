package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/common/metrics"
	"restaurant-ordering/internal/connections/payment"
	"restaurant-ordering/internal/domain"
	dto "restaurant-ordering/internal/microservices/order/domain/dto"
	"restaurant-ordering/internal/microservices/order/repository"
)

type memOrders struct {
	orders map[string]domain.Order
	log    map[string][]domain.StatusChange
	seq    int64
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]domain.Order{}, log: map[string][]domain.StatusChange{}}
}

func (m *memOrders) Create(_ context.Context, o *domain.Order, by string) error {
	m.seq++
	o.OrderNumber = repository.FormatOrderNumber(o.CreatedAt, m.seq)
	m.orders[o.ID] = *o
	m.log[o.ID] = append(m.log[o.ID], domain.StatusChange{Status: o.Status, ChangedBy: by})
	return nil
}

func (m *memOrders) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) List(context.Context, repository.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *memOrders) SetGatewayOrder(_ context.Context, id, gw string) error {
	o := m.orders[id]
	o.GatewayOrderID = gw
	m.orders[id] = o
	return nil
}

func (m *memOrders) Transition(_ context.Context, id, by, notes string, fn repository.Mutator) (domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	prev := o.Status
	changed, err := fn(&o)
	if err != nil {
		return domain.Order{}, err
	}
	if !changed {
		return o, nil
	}
	m.orders[id] = o
	if o.Status != prev {
		m.log[id] = append(m.log[id], domain.StatusChange{Status: o.Status, ChangedBy: by, Notes: notes})
	}
	return o, nil
}

func (m *memOrders) Timeline(_ context.Context, id string) ([]domain.StatusChange, error) {
	return m.log[id], nil
}

func (m *memOrders) MarkNotified(context.Context, string, time.Time) error { return nil }

func (m *memOrders) SetCallStatus(context.Context, string, string, string, time.Time) error {
	return nil
}

type stubCarts struct {
	items   []domain.CartItem
	cleared bool
}

func (c *stubCarts) Get(_ context.Context, userID string) (domain.Cart, error) {
	if c.cleared {
		return domain.NewCart(userID, nil), nil
	}
	return domain.NewCart(userID, c.items), nil
}

func (c *stubCarts) Clear(context.Context, string) error {
	c.cleared = true
	return nil
}

type openFlag bool

func (f openFlag) IsOpen(context.Context) (bool, error) { return bool(f), nil }

type profileMap map[string]domain.User

func (p profileMap) Get(_ context.Context, id string) (domain.User, error) {
	u, ok := p[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type stubGateway struct {
	created int
	goodSig string
	err     error
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

func (g *stubGateway) CreateOrder(_ context.Context, amount float64, currency, receipt string, _ map[string]string) (payment.GatewayOrder, error) {
	g.created++
	if g.err != nil {
		return payment.GatewayOrder{}, g.err
	}
	return payment.GatewayOrder{ID: "order_gw_1", Amount: payment.ToMinor(amount), Currency: currency}, nil
}

func (g *stubGateway) VerifySignature(gwID, paymentID, sig string) bool {
	return gwID == "order_gw_1" && sig == g.goodSig
}

type recordingPublisher struct {
	events []domain.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key, _ string, ev any) error {
	if key != domain.RoutingKeyOrderPlaced {
		return errors.New("unexpected routing key " + key)
	}
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev.(domain.OrderPlacedEvent))
	return nil
}

type fixture struct {
	svc    *OrderService
	repo   *memOrders
	carts  *stubCarts
	gw     *stubGateway
	events *recordingPublisher
}

var customer = domain.Identity{UID: "u1", Name: "Asha", Email: "asha@example.com", Phone: "9000000001"}

var homeAddress = &domain.Address{Street: "12 Charminar Rd", City: "Hyderabad", Pincode: "500002"}

func newFixture(open bool) *fixture {
	f := &fixture{
		repo: newMemOrders(),
		carts: &stubCarts{items: []domain.CartItem{
			{MenuItemID: "biryani", Name: "Chicken Dum Biryani", Price: 170, Quantity: 2},
		}},
		gw:     &stubGateway{goodSig: "valid"},
		events: &recordingPublisher{},
	}
	profiles := profileMap{"u1": {ID: "u1", Name: "Asha K", Address: homeAddress}}
	f.svc = NewOrderService(f.repo, f.carts, openFlag(open), profiles, f.gw, f.events, Options{
		RestaurantName: "Pitta's Bawarchi",
		Currency:       "INR",
		CODDeliveryFee: 40,
	}, logger.NewWithWriter("test", io.Discard))
	return f
}

func TestCheckoutCOD(t *testing.T) {
	f := newFixture(true)
	resp, err := f.svc.Checkout(context.Background(), customer, dto.CheckoutRequest{
		PaymentMethod: domain.PaymentCOD,
		Address:       homeAddress,
	})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	o := resp.Order
	if o.Subtotal != 340 || o.DeliveryFee != 40 || o.TotalAmount != 380 {
		t.Fatalf("amounts = %v + %v = %v, want 340 + 40 = 380", o.Subtotal, o.DeliveryFee, o.TotalAmount)
	}
	if o.Status != domain.StatusPending || o.PaymentStatus != domain.PaymentPending {
		t.Fatalf("status = %s/%s, want pending/pending", o.Status, o.PaymentStatus)
	}
	if resp.Payment != nil {
		t.Fatal("COD checkout returned a payment session")
	}
	if !f.carts.cleared {
		t.Fatal("cart not cleared after COD checkout")
	}
	if len(f.events.events) != 1 || f.events.events[0].OrderID != o.ID {
		t.Fatalf("published %+v, want one order.placed for %s", f.events.events, o.ID)
	}
	if o.UserName != "Asha K" || o.UserPhone != "9000000001" {
		t.Fatalf("contact = %q / %q", o.UserName, o.UserPhone)
	}
}

func TestCheckoutRejections(t *testing.T) {
	tests := []struct {
		name string
		open bool
		req  dto.CheckoutRequest
		prep func(f *fixture)
		want error
	}{
		{"closed", false, dto.CheckoutRequest{PaymentMethod: domain.PaymentCOD, Address: homeAddress}, nil, domain.ErrRestaurantClosed},
		{"empty cart", true, dto.CheckoutRequest{PaymentMethod: domain.PaymentCOD, Address: homeAddress},
			func(f *fixture) { f.carts.items = nil }, domain.ErrEmptyCart},
		{"bad method", true, dto.CheckoutRequest{PaymentMethod: "CARD", Address: homeAddress}, nil, domain.ErrValidation},
		{"no address", true, dto.CheckoutRequest{PaymentMethod: domain.PaymentCOD}, nil, domain.ErrValidation},
		{"partial address", true, dto.CheckoutRequest{PaymentMethod: domain.PaymentCOD,
			Address: &domain.Address{Street: "x", City: "y"}}, nil, domain.ErrValidation},
		{"payments disabled", true, dto.CheckoutRequest{PaymentMethod: domain.PaymentOnline, Address: homeAddress},
			func(f *fixture) { f.svc.payments = nil }, domain.ErrPaymentsDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.open)
			if tt.prep != nil {
				tt.prep(f)
			}
			_, err := f.svc.Checkout(context.Background(), customer, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Checkout() error = %v, want %v", err, tt.want)
			}
			if len(f.repo.orders) != 0 {
				t.Fatal("rejected checkout stored an order")
			}
		})
	}
}

func TestCheckoutUsesProfileAddress(t *testing.T) {
	f := newFixture(true)
	resp, err := f.svc.Checkout(context.Background(), customer, dto.CheckoutRequest{
		PaymentMethod:     domain.PaymentCOD,
		UseProfileAddress: true,
	})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if resp.Order.Address != *homeAddress {
		t.Fatalf("address = %+v, want profile address", resp.Order.Address)
	}
}

func checkoutOnline(t *testing.T, f *fixture) domain.Order {
	t.Helper()
	resp, err := f.svc.Checkout(context.Background(), customer, dto.CheckoutRequest{
		PaymentMethod: domain.PaymentOnline,
		Address:       homeAddress,
	})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if resp.Payment == nil {
		t.Fatal("online checkout returned no payment session")
	}
	if resp.Payment.Amount != 34000 || resp.Payment.KeyID != "rzp_test_key" || resp.Payment.GatewayOrderID != "order_gw_1" {
		t.Fatalf("payment session = %+v", resp.Payment)
	}
	return resp.Order
}

func TestOnlinePaymentConfirm(t *testing.T) {
	f := newFixture(true)
	o := checkoutOnline(t, f)
	if len(f.events.events) != 0 || f.carts.cleared {
		t.Fatal("online order announced before payment")
	}

	req := dto.ConfirmPaymentRequest{PaymentID: "pay_1", GatewayOrderID: "order_gw_1", Signature: "valid"}
	got, err := f.svc.ConfirmPayment(context.Background(), customer, o.ID, req)
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	if got.PaymentStatus != domain.PaymentSuccess || got.Status != domain.StatusConfirmed || got.PaymentID != "pay_1" {
		t.Fatalf("confirmed order = %s/%s/%s", got.Status, got.PaymentStatus, got.PaymentID)
	}
	if len(f.events.events) != 1 || !f.carts.cleared {
		t.Fatalf("events = %d, cart cleared = %v", len(f.events.events), f.carts.cleared)
	}

	if _, err := f.svc.ConfirmPayment(context.Background(), customer, o.ID, req); err != nil {
		t.Fatalf("second ConfirmPayment() error = %v", err)
	}
	if len(f.events.events) != 1 {
		t.Fatalf("repeat confirm published again: %d events", len(f.events.events))
	}
}

func TestOnlinePaymentBadSignature(t *testing.T) {
	f := newFixture(true)
	o := checkoutOnline(t, f)

	_, err := f.svc.ConfirmPayment(context.Background(), customer, o.ID, dto.ConfirmPaymentRequest{
		PaymentID: "pay_1", GatewayOrderID: "order_gw_1", Signature: "forged",
	})
	if !errors.Is(err, domain.ErrPaymentVerification) {
		t.Fatalf("ConfirmPayment() error = %v, want verification failure", err)
	}
	if f.repo.orders[o.ID].PaymentStatus != domain.PaymentFailed {
		t.Fatalf("payment status = %s, want failed", f.repo.orders[o.ID].PaymentStatus)
	}
	if len(f.events.events) != 0 {
		t.Fatal("unverified payment published an event")
	}
}

func TestCancelPayment(t *testing.T) {
	f := newFixture(true)
	o := checkoutOnline(t, f)

	got, err := f.svc.CancelPayment(context.Background(), customer, o.ID)
	if err != nil {
		t.Fatalf("CancelPayment() error = %v", err)
	}
	if got.Status != domain.StatusCancelled || got.PaymentStatus != domain.PaymentCancelled {
		t.Fatalf("cancelled order = %s/%s", got.Status, got.PaymentStatus)
	}
	_, err = f.svc.ConfirmPayment(context.Background(), customer, o.ID, dto.ConfirmPaymentRequest{
		PaymentID: "pay_1", Signature: "valid",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("confirm after cancel error = %v, want conflict", err)
	}
	tl, _ := f.svc.Timeline(context.Background(), customer, o.ID)
	if len(tl) != 2 || tl[1].Status != domain.StatusCancelled {
		t.Fatalf("timeline = %+v", tl)
	}
}

func TestOrdersAreVisibleToOwnerAndAdmin(t *testing.T) {
	f := newFixture(true)
	resp, err := f.svc.Checkout(context.Background(), customer, dto.CheckoutRequest{PaymentMethod: domain.PaymentCOD, Address: homeAddress})
	if err != nil {
		t.Fatal(err)
	}
	id := resp.Order.ID

	stranger := domain.Identity{UID: "u9"}
	if _, err := f.svc.Get(context.Background(), stranger, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger Get() error = %v, want not found", err)
	}
	if _, err := f.svc.CancelPayment(context.Background(), stranger, id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger CancelPayment() error = %v, want not found", err)
	}
	if _, err := f.svc.Get(context.Background(), domain.Identity{UID: "admin", IsAdmin: true}, id); err != nil {
		t.Errorf("admin Get() error = %v", err)
	}
	hist, _ := f.svc.History(context.Background(), customer)
	if len(hist) != 1 {
		t.Errorf("History() len = %d, want 1", len(hist))
	}
}

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)
	if got := repository.FormatOrderNumber(day, 42); got != "ORD_20240309_000042" {
		t.Fatalf("FormatOrderNumber() = %q", got)
	}
}

func TestOnlineCheckoutGatewayFailureAbandonsOrder(t *testing.T) {
	f := newFixture(true)
	f.gw.err = errors.New("razorpay: 503")

	_, err := f.svc.Checkout(context.Background(), customer, dto.CheckoutRequest{
		PaymentMethod: domain.PaymentOnline,
		Address:       homeAddress,
	})
	if err == nil {
		t.Fatal("Checkout() succeeded with the gateway down")
	}
	if len(f.repo.orders) != 1 {
		t.Fatalf("stored orders = %d, want 1", len(f.repo.orders))
	}
	for _, o := range f.repo.orders {
		if o.PaymentStatus != domain.PaymentFailed || o.Status != domain.StatusCancelled {
			t.Fatalf("abandoned order = %s/%s, want cancelled/failed", o.Status, o.PaymentStatus)
		}
	}
	if len(f.events.events) != 0 || f.carts.cleared {
		t.Fatal("abandoned order was announced or emptied the cart")
	}
}

func TestPublishFailureAfterCommitIsNotReturned(t *testing.T) {
	f := newFixture(true)
	f.events.err = errors.New("broker nack")

	resp, err := f.svc.Checkout(context.Background(), customer, dto.CheckoutRequest{
		PaymentMethod: domain.PaymentCOD,
		Address:       homeAddress,
	})
	if err != nil {
		t.Fatalf("Checkout() error = %v, want nil once the order is stored", err)
	}
	if _, ok := f.repo.orders[resp.Order.ID]; !ok {
		t.Fatal("order not stored")
	}
	if !f.carts.cleared {
		t.Fatal("cart not cleared")
	}
}

func TestOrdersPlacedCountsOnlyAnnouncedOrders(t *testing.T) {
	online := metrics.OrdersPlaced.WithLabelValues(string(domain.PaymentOnline))
	before := testutil.ToFloat64(online)

	f := newFixture(true)
	o := checkoutOnline(t, f)
	if got := testutil.ToFloat64(online) - before; got != 0 {
		t.Fatalf("unpaid online order counted: delta = %v", got)
	}

	req := dto.ConfirmPaymentRequest{PaymentID: "pay_1", GatewayOrderID: "order_gw_1", Signature: "valid"}
	if _, err := f.svc.ConfirmPayment(context.Background(), customer, o.ID, req); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(online) - before; got != 1 {
		t.Fatalf("paid online order delta = %v, want 1", got)
	}
}
