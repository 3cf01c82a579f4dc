package service

import (
	"context"
	"time"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/restaurant/repository"
)

type StatusServiceInterface interface {
	Get(ctx context.Context) (domain.RestaurantStatus, error)
	IsOpen(ctx context.Context) (bool, error)
	Set(ctx context.Context, admin domain.Identity, open bool) (domain.RestaurantStatus, error)
	Toggle(ctx context.Context, admin domain.Identity) (domain.RestaurantStatus, error)
}

type StatusService struct {
	repo repository.StatusRepositoryInterface
	lg   *logger.Logger
	now  func() time.Time
}

func NewStatusService(repo repository.StatusRepositoryInterface, lg *logger.Logger) *StatusService {
	return &StatusService{repo: repo, lg: lg, now: time.Now}
}

func (s *StatusService) Get(ctx context.Context) (domain.RestaurantStatus, error) {
	return s.repo.Get(ctx)
}

func (s *StatusService) IsOpen(ctx context.Context) (bool, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return false, err
	}
	return st.IsOpen, nil
}

func (s *StatusService) Set(ctx context.Context, admin domain.Identity, open bool) (domain.RestaurantStatus, error) {
	st, err := s.repo.Set(ctx, open, s.now().UTC())
	if err != nil {
		return domain.RestaurantStatus{}, err
	}
	s.lg.Info("restaurant_status_changed", map[string]any{"is_open": st.IsOpen, "changed_by": admin.Email})
	return st, nil
}

func (s *StatusService) Toggle(ctx context.Context, admin domain.Identity) (domain.RestaurantStatus, error) {
	st, err := s.repo.Toggle(ctx, s.now().UTC())
	if err != nil {
		return domain.RestaurantStatus{}, err
	}
	s.lg.Info("restaurant_status_changed", map[string]any{"is_open": st.IsOpen, "changed_by": admin.Email})
	return st, nil
}
