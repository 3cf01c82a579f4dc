package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/common/metrics"
	"restaurant-ordering/internal/connections/payment"
	"restaurant-ordering/internal/domain"
	dto "restaurant-ordering/internal/microservices/order/domain/dto"
	"restaurant-ordering/internal/microservices/order/repository"
)

// Publisher puts domain events on the bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey, correlationID string, event any) error
}

// PaymentGateway is the online payment provider. A nil gateway disables
// ONLINE checkout.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (payment.GatewayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type CartStore interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type Availability interface {
	IsOpen(ctx context.Context) (bool, error)
}

type Profiles interface {
	Get(ctx context.Context, userID string) (domain.User, error)
}

type Options struct {
	RestaurantName    string
	Currency          string
	CODDeliveryFee    float64
	OnlineDeliveryFee float64
	Location          *time.Location
}

type OrderServiceInterface interface {
	Checkout(ctx context.Context, caller domain.Identity, req dto.CheckoutRequest) (dto.CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, caller domain.Identity, orderID string, req dto.ConfirmPaymentRequest) (domain.Order, error)
	CancelPayment(ctx context.Context, caller domain.Identity, orderID string) (domain.Order, error)
	History(ctx context.Context, caller domain.Identity) ([]domain.Order, error)
	Get(ctx context.Context, caller domain.Identity, orderID string) (domain.Order, error)
	Timeline(ctx context.Context, caller domain.Identity, orderID string) ([]domain.StatusChange, error)
}

type OrderService struct {
	repo     repository.OrderRepositoryInterface
	carts    CartStore
	status   Availability
	profiles Profiles
	payments PaymentGateway
	events   Publisher
	opts     Options
	lg       *logger.Logger
	now      func() time.Time
}

func NewOrderService(repo repository.OrderRepositoryInterface, carts CartStore, status Availability,
	profiles Profiles, payments PaymentGateway, events Publisher, opts Options, lg *logger.Logger) *OrderService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &OrderService{
		repo:     repo,
		carts:    carts,
		status:   status,
		profiles: profiles,
		payments: payments,
		events:   events,
		opts:     opts,
		lg:       lg,
		now:      time.Now,
	}
}

func (s *OrderService) deliveryFee(m domain.PaymentMethod) float64 {
	if m == domain.PaymentCOD {
		return s.opts.CODDeliveryFee
	}
	return s.opts.OnlineDeliveryFee
}

func (s *OrderService) Checkout(ctx context.Context, caller domain.Identity, req dto.CheckoutRequest) (dto.CheckoutResponse, error) {
	if !req.PaymentMethod.Valid() {
		return dto.CheckoutResponse{}, domain.Invalid("payment_method must be ONLINE or COD")
	}
	if req.PaymentMethod == domain.PaymentOnline && s.payments == nil {
		return dto.CheckoutResponse{}, domain.ErrPaymentsDisabled
	}

	open, err := s.status.IsOpen(ctx)
	if err != nil {
		return dto.CheckoutResponse{}, err
	}
	if !open {
		return dto.CheckoutResponse{}, domain.ErrRestaurantClosed
	}

	cart, err := s.carts.Get(ctx, caller.UID)
	if err != nil {
		return dto.CheckoutResponse{}, err
	}
	if len(cart.Items) == 0 {
		return dto.CheckoutResponse{}, domain.ErrEmptyCart
	}

	profile, err := s.profiles.Get(ctx, caller.UID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return dto.CheckoutResponse{}, err
	}
	addr, err := pickAddress(req, profile)
	if err != nil {
		return dto.CheckoutResponse{}, err
	}

	now := s.now().In(s.opts.Location)
	o := domain.Order{
		ID:            uuid.NewString(),
		UserID:        caller.UID,
		UserName:      firstNonEmpty(profile.Name, caller.Name),
		UserEmail:     firstNonEmpty(profile.Email, caller.Email),
		UserPhone:     firstNonEmpty(strings.TrimSpace(req.Phone), profile.Phone, caller.Phone),
		Items:         make([]domain.OrderItem, 0, len(cart.Items)),
		Subtotal:      cart.TotalAmount,
		DeliveryFee:   s.deliveryFee(req.PaymentMethod),
		Address:       addr,
		Status:        domain.StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.TotalAmount = o.Subtotal + o.DeliveryFee
	for _, it := range cart.Items {
		o.Items = append(o.Items, domain.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
			Image:      it.Image,
		})
	}

	if err := s.repo.Create(ctx, &o, caller.UID); err != nil {
		return dto.CheckoutResponse{}, err
	}
	s.lg.Info("order_created", map[string]any{
		"order_id":       o.ID,
		"order_number":   o.OrderNumber,
		"payment_method": o.PaymentMethod,
		"total_amount":   o.TotalAmount,
	})

	if o.PaymentMethod == domain.PaymentCOD {
		s.placed(ctx, o)
		return dto.CheckoutResponse{Order: o}, nil
	}

	gw, err := s.payments.CreateOrder(ctx, o.TotalAmount, s.opts.Currency, o.OrderNumber, map[string]string{"order_id": o.ID})
	if err != nil {
		s.lg.Error("gateway_order_failed", err, map[string]any{"order_id": o.ID})
		s.abandon(ctx, o.ID, "payment gateway unavailable")
		return dto.CheckoutResponse{}, fmt.Errorf("create payment: %w", err)
	}
	if err := s.repo.SetGatewayOrder(ctx, o.ID, gw.ID); err != nil {
		return dto.CheckoutResponse{}, err
	}
	o.GatewayOrderID = gw.ID

	return dto.CheckoutResponse{
		Order: o,
		Payment: &dto.PaymentSession{
			KeyID:          s.payments.KeyID(),
			GatewayOrderID: gw.ID,
			Amount:         gw.Amount,
			Currency:       gw.Currency,
			Name:           s.opts.RestaurantName,
			Description:    "Order " + o.OrderNumber,
			Prefill:        dto.Prefill{Name: o.UserName, Email: o.UserEmail, Contact: o.UserPhone},
		},
	}, nil
}

func pickAddress(req dto.CheckoutRequest, profile domain.User) (domain.Address, error) {
	if req.UseProfileAddress {
		if profile.Address == nil || !profile.Address.Complete() {
			return domain.Address{}, domain.Invalid("saved address is incomplete")
		}
		return *profile.Address, nil
	}
	if req.Address == nil || !req.Address.Complete() {
		return domain.Address{}, domain.Invalid("street, city and pincode are required")
	}
	a := *req.Address
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Landmark = strings.TrimSpace(a.Landmark)
	return a, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// placed clears the cart and announces the order. The order is already
// committed, so failures here are logged and not returned.
func (s *OrderService) placed(ctx context.Context, o domain.Order) {
	metrics.OrdersPlaced.WithLabelValues(string(o.PaymentMethod)).Inc()
	if err := s.carts.Clear(ctx, o.UserID); err != nil {
		s.lg.Error("cart_clear_failed", err, map[string]any{"order_id": o.ID, "user_id": o.UserID})
	}
	ev := domain.NewOrderPlacedEvent(o, s.now())
	if err := s.events.Publish(ctx, domain.RoutingKeyOrderPlaced, o.OrderNumber, ev); err != nil {
		s.lg.Error("order_publish_failed", err, map[string]any{"order_id": o.ID, "order_number": o.OrderNumber})
		return
	}
	s.lg.Debug("order_published", map[string]any{"order_id": o.ID, "routing_key": domain.RoutingKeyOrderPlaced})
}

func (s *OrderService) abandon(ctx context.Context, orderID, notes string) {
	_, err := s.repo.Transition(ctx, orderID, "system", notes, func(o *domain.Order) (bool, error) {
		o.PaymentStatus = domain.PaymentFailed
		o.Status = domain.StatusCancelled
		return true, nil
	})
	if err != nil {
		s.lg.Error("order_abandon_failed", err, map[string]any{"order_id": orderID})
	}
}

func ownedBy(o *domain.Order, caller domain.Identity) error {
	if o.UserID != caller.UID {
		return fmt.Errorf("order %s: %w", o.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *OrderService) ConfirmPayment(ctx context.Context, caller domain.Identity, orderID string, req dto.ConfirmPaymentRequest) (domain.Order, error) {
	if req.PaymentID == "" || req.Signature == "" {
		return domain.Order{}, domain.Invalid("payment id and signature are required")
	}
	if s.payments == nil {
		return domain.Order{}, domain.ErrPaymentsDisabled
	}

	var confirmed, rejected bool
	o, err := s.repo.Transition(ctx, orderID, caller.UID, "payment verified", func(o *domain.Order) (bool, error) {
		if err := ownedBy(o, caller); err != nil {
			return false, err
		}
		if o.PaymentMethod != domain.PaymentOnline {
			return false, fmt.Errorf("order %s is not an online order: %w", o.OrderNumber, domain.ErrConflict)
		}
		if o.PaymentStatus == domain.PaymentSuccess {
			return false, nil
		}
		if o.PaymentStatus != domain.PaymentPending {
			return false, fmt.Errorf("payment is %s: %w", o.PaymentStatus, domain.ErrConflict)
		}
		gwID := firstNonEmpty(req.GatewayOrderID, o.GatewayOrderID)
		if gwID != o.GatewayOrderID || !s.payments.VerifySignature(gwID, req.PaymentID, req.Signature) {
			o.PaymentStatus = domain.PaymentFailed
			rejected = true
			return true, nil
		}
		o.PaymentStatus = domain.PaymentSuccess
		o.PaymentID = req.PaymentID
		o.Status = domain.StatusConfirmed
		confirmed = true
		return true, nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	if rejected {
		s.lg.Warn("payment_signature_rejected", map[string]any{"order_id": orderID})
		return domain.Order{}, domain.ErrPaymentVerification
	}
	if confirmed {
		s.lg.Info("payment_confirmed", map[string]any{"order_id": o.ID, "payment_id": o.PaymentID})
		s.placed(ctx, o)
	}
	return o, nil
}

// CancelPayment records that the customer closed the payment overlay.
func (s *OrderService) CancelPayment(ctx context.Context, caller domain.Identity, orderID string) (domain.Order, error) {
	return s.repo.Transition(ctx, orderID, caller.UID, "payment cancelled by customer", func(o *domain.Order) (bool, error) {
		if err := ownedBy(o, caller); err != nil {
			return false, err
		}
		switch o.PaymentStatus {
		case domain.PaymentCancelled:
			return false, nil
		case domain.PaymentPending:
		default:
			return false, fmt.Errorf("payment is %s: %w", o.PaymentStatus, domain.ErrConflict)
		}
		if o.PaymentMethod != domain.PaymentOnline {
			return false, fmt.Errorf("order %s is not an online order: %w", o.OrderNumber, domain.ErrConflict)
		}
		o.PaymentStatus = domain.PaymentCancelled
		o.Status = domain.StatusCancelled
		return true, nil
	})
}

func (s *OrderService) History(ctx context.Context, caller domain.Identity) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, caller.UID)
}

func (s *OrderService) Get(ctx context.Context, caller domain.Identity, orderID string) (domain.Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !caller.IsAdmin {
		if err := ownedBy(&o, caller); err != nil {
			return domain.Order{}, err
		}
	}
	return o, nil
}

func (s *OrderService) Timeline(ctx context.Context, caller domain.Identity, orderID string) ([]domain.StatusChange, error) {
	if _, err := s.Get(ctx, caller, orderID); err != nil {
		return nil, err
	}
	return s.repo.Timeline(ctx, orderID)
}
