package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/order/repository"
	"restaurant-ordering/internal/microservices/tracker/models"
)

// OrderStore is the slice of the order repository the admin views need.
type OrderStore interface {
	List(ctx context.Context, f repository.ListFilter) ([]domain.Order, error)
	Transition(ctx context.Context, id, changedBy, notes string, fn repository.Mutator) (domain.Order, error)
}

type TrackerServiceInterface interface {
	ListOrders(ctx context.Context, view models.View) (models.OrderList, error)
	UpdateStatus(ctx context.Context, admin domain.Identity, orderID string, status domain.OrderStatus, notes string) (domain.Order, error)
	Stats(ctx context.Context) (models.Stats, error)
}

type TrackerService struct {
	orders OrderStore
	loc    *time.Location
	lg     *logger.Logger
	now    func() time.Time
}

func NewTrackerService(orders OrderStore, loc *time.Location, lg *logger.Logger) *TrackerService {
	if loc == nil {
		loc = time.UTC
	}
	return &TrackerService{orders: orders, loc: loc, lg: lg, now: time.Now}
}

func (s *TrackerService) filter(view models.View) repository.ListFilter {
	midnight := Midnight(s.now(), s.loc)
	switch view {
	case models.ViewToday:
		return repository.ListFilter{From: midnight, CountableOnly: true}
	case models.ViewPast:
		return repository.ListFilter{Before: midnight, CountableOnly: true}
	case models.ViewCompleted:
		return repository.ListFilter{Status: domain.StatusCompleted}
	default:
		return repository.ListFilter{}
	}
}

func (s *TrackerService) ListOrders(ctx context.Context, view models.View) (models.OrderList, error) {
	if view == "" {
		view = models.ViewToday
	}
	if !view.Valid() {
		return models.OrderList{}, domain.Invalid(fmt.Sprintf("unknown view %q", view))
	}
	orders, err := s.orders.List(ctx, s.filter(view))
	if err != nil {
		return models.OrderList{}, err
	}
	return models.OrderList{View: view, Count: len(orders), Orders: orders}, nil
}

func (s *TrackerService) UpdateStatus(ctx context.Context, admin domain.Identity, orderID string, status domain.OrderStatus, notes string) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.Invalid(fmt.Sprintf("unknown status %q", status))
	}
	by := admin.Email
	if by == "" {
		by = admin.UID
	}
	o, err := s.orders.Transition(ctx, orderID, by, strings.TrimSpace(notes), func(o *domain.Order) (bool, error) {
		if o.Status == status {
			return false, nil
		}
		o.Status = status
		return true, nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.lg.Info("order_status_changed", map[string]any{
		"order_id":   o.ID,
		"status":     o.Status,
		"changed_by": by,
	})
	return o, nil
}

func (s *TrackerService) Stats(ctx context.Context) (models.Stats, error) {
	now := s.now()
	from := Midnight(now, s.loc).AddDate(0, 0, -30)
	orders, err := s.orders.List(ctx, repository.ListFilter{From: from, CountableOnly: true})
	if err != nil {
		return models.Stats{}, err
	}
	return ComputeStats(orders, now, s.loc), nil
}
