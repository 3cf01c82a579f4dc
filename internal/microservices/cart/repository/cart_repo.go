package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/domain"
)

type CartRepositoryInterface interface {
	Items(ctx context.Context, userID string) ([]domain.CartItem, error)
	Add(ctx context.Context, userID string, item domain.CartItem) error
	SetQuantity(ctx context.Context, userID, menuItemID string, qty int) error
	Remove(ctx context.Context, userID, menuItemID string) error
	Clear(ctx context.Context, userID string) error
}

type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) CartRepositoryInterface {
	return &CartRepository{db: db}
}

func (r *CartRepository) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	rows, err := r.db.Query(ctx, `
SELECT menu_item_id, name, price, quantity, image
FROM cart_items
WHERE user_id = $1
ORDER BY added_at
`, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	out := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.Image); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Add inserts the line or bumps the quantity of an existing one. The price
// snapshot is refreshed on every add.
func (r *CartRepository) Add(ctx context.Context, userID string, it domain.CartItem) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO cart_items (user_id, menu_item_id, name, price, quantity, image)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, menu_item_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity,
    name     = EXCLUDED.name,
    price    = EXCLUDED.price,
    image    = EXCLUDED.image
`, userID, it.MenuItemID, it.Name, it.Price, it.Quantity, it.Image)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, userID, menuItemID string, qty int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND menu_item_id = $2`,
		userID, menuItemID, qty)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cart item %s: %w", menuItemID, domain.ErrNotFound)
	}
	return nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, menuItemID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
