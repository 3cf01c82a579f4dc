package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/domain"
)

type StatusRepositoryInterface interface {
	Get(ctx context.Context) (domain.RestaurantStatus, error)
	Set(ctx context.Context, open bool, at time.Time) (domain.RestaurantStatus, error)
	Toggle(ctx context.Context, at time.Time) (domain.RestaurantStatus, error)
}

type StatusRepository struct {
	db *pgxpool.Pool
}

func NewStatusRepository(db *pgxpool.Pool) StatusRepositoryInterface {
	return &StatusRepository{db: db}
}

// Get reads the single status row, creating it open if it is missing.
func (r *StatusRepository) Get(ctx context.Context) (domain.RestaurantStatus, error) {
	var st domain.RestaurantStatus
	err := r.db.QueryRow(ctx, `SELECT is_open, last_updated FROM restaurant_status WHERE id = 1`).
		Scan(&st.IsOpen, &st.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.Set(ctx, true, time.Now().UTC())
	}
	if err != nil {
		return domain.RestaurantStatus{}, fmt.Errorf("get restaurant status: %w", err)
	}
	return st, nil
}

func (r *StatusRepository) Set(ctx context.Context, open bool, at time.Time) (domain.RestaurantStatus, error) {
	var st domain.RestaurantStatus
	err := r.db.QueryRow(ctx, `
INSERT INTO restaurant_status (id, is_open, last_updated) VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET is_open = EXCLUDED.is_open, last_updated = EXCLUDED.last_updated
RETURNING is_open, last_updated
`, open, at).Scan(&st.IsOpen, &st.LastUpdated)
	if err != nil {
		return domain.RestaurantStatus{}, fmt.Errorf("set restaurant status: %w", err)
	}
	return st, nil
}

func (r *StatusRepository) Toggle(ctx context.Context, at time.Time) (domain.RestaurantStatus, error) {
	var st domain.RestaurantStatus
	err := r.db.QueryRow(ctx, `
INSERT INTO restaurant_status (id, is_open, last_updated) VALUES (1, FALSE, $1)
ON CONFLICT (id) DO UPDATE SET is_open = NOT restaurant_status.is_open, last_updated = EXCLUDED.last_updated
RETURNING is_open, last_updated
`, at).Scan(&st.IsOpen, &st.LastUpdated)
	if err != nil {
		return domain.RestaurantStatus{}, fmt.Errorf("toggle restaurant status: %w", err)
	}
	return st, nil
}
