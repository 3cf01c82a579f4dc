package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/order/repository"
	"restaurant-ordering/internal/microservices/tracker/models"
)

type fakeStore struct {
	lastFilter repository.ListFilter
	order      domain.Order
	logged     []string
}

func (f *fakeStore) List(_ context.Context, flt repository.ListFilter) ([]domain.Order, error) {
	f.lastFilter = flt
	return []domain.Order{f.order}, nil
}

func (f *fakeStore) Transition(_ context.Context, id, by, _ string, fn repository.Mutator) (domain.Order, error) {
	if id != f.order.ID {
		return domain.Order{}, domain.ErrNotFound
	}
	o := f.order
	changed, err := fn(&o)
	if err != nil {
		return domain.Order{}, err
	}
	if changed {
		f.order = o
		f.logged = append(f.logged, by+":"+string(o.Status))
	}
	return o, nil
}

func newTracker(store *fakeStore) *TrackerService {
	s := NewTrackerService(store, time.UTC, logger.NewWithWriter("test", io.Discard))
	s.now = func() time.Time { return time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC) }
	return s
}

func TestListOrdersViews(t *testing.T) {
	store := &fakeStore{order: domain.Order{ID: "o1"}}
	s := newTracker(store)
	midnight := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		view models.View
		want repository.ListFilter
	}{
		{"", repository.ListFilter{From: midnight, CountableOnly: true}},
		{models.ViewToday, repository.ListFilter{From: midnight, CountableOnly: true}},
		{models.ViewPast, repository.ListFilter{Before: midnight, CountableOnly: true}},
		{models.ViewCompleted, repository.ListFilter{Status: domain.StatusCompleted}},
		{models.ViewAll, repository.ListFilter{}},
	}
	for _, tt := range tests {
		list, err := s.ListOrders(context.Background(), tt.view)
		if err != nil {
			t.Fatalf("ListOrders(%q) error = %v", tt.view, err)
		}
		if store.lastFilter != tt.want {
			t.Errorf("ListOrders(%q) filter = %+v, want %+v", tt.view, store.lastFilter, tt.want)
		}
		if list.Count != 1 {
			t.Errorf("ListOrders(%q) count = %d", tt.view, list.Count)
		}
	}

	if _, err := s.ListOrders(context.Background(), "yesterday"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ListOrders(bad view) error = %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := &fakeStore{order: domain.Order{ID: "o1", Status: domain.StatusPending}}
	s := newTracker(store)
	admin := domain.Identity{UID: "a1", Email: "owner@example.com", IsAdmin: true}

	o, err := s.UpdateStatus(context.Background(), admin, "o1", domain.StatusConfirmed, "")
	if err != nil || o.Status != domain.StatusConfirmed {
		t.Fatalf("UpdateStatus() = %s, %v", o.Status, err)
	}
	if _, err := s.UpdateStatus(context.Background(), admin, "o1", domain.StatusConfirmed, ""); err != nil {
		t.Fatal(err)
	}
	if len(store.logged) != 1 || store.logged[0] != "owner@example.com:confirmed" {
		t.Fatalf("status log = %v, want a single entry", store.logged)
	}

	if _, err := s.UpdateStatus(context.Background(), admin, "o1", "accepted", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateStatus(bad) error = %v", err)
	}
	if _, err := s.UpdateStatus(context.Background(), admin, "nope", domain.StatusCompleted, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v", err)
	}
}
