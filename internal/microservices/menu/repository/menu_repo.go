package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/domain"
)

type Filter struct {
	Category      string
	Query         string
	AvailableOnly bool
}

type MenuRepositoryInterface interface {
	List(ctx context.Context, f Filter) ([]domain.MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (domain.MenuItem, error)
	Create(ctx context.Context, item domain.MenuItem) error
	Update(ctx context.Context, item domain.MenuItem) error
	Delete(ctx context.Context, id string) error
	ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error)
	SetImage(ctx context.Context, id, url string) error
	Names(ctx context.Context) (map[string]bool, error)

	ListReviews(ctx context.Context, itemID string) ([]domain.Review, error)
	AddReview(ctx context.Context, r domain.Review) error
}

type MenuRepository struct {
	db *pgxpool.Pool
}

func NewMenuRepository(db *pgxpool.Pool) MenuRepositoryInterface {
	return &MenuRepository{db: db}
}

const menuColumns = `id, name, description, price, category, image, is_veg, is_available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.Image,
		&m.IsVeg, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	return m, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns free text into an ILIKE substring pattern with the
// wildcards in q matched literally.
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func (r *MenuRepository) List(ctx context.Context, f Filter) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+menuColumns+`
FROM menu_items
WHERE ($1 = '' OR category = $1)
  AND ($2 = '' OR name ILIKE $4 OR description ILIKE $4 OR category ILIKE $4)
  AND (NOT $3 OR is_available)
ORDER BY category, name
`, f.Category, f.Query, f.AvailableOnly, ContainsPattern(f.Query))
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer rows.Close()

	out := []domain.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MenuRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM menu_items WHERE is_available ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *MenuRepository) Get(ctx context.Context, id string) (domain.MenuItem, error) {
	m, err := scanMenuItem(r.db.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id=$1`, id))
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("menu item %s: %w", id, err)
	}
	return m, nil
}

func (r *MenuRepository) Create(ctx context.Context, m domain.MenuItem) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO menu_items (id, name, description, price, category, image, is_veg, is_available, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
`, m.ID, m.Name, m.Description, m.Price, m.Category, m.Image, m.IsVeg, m.IsAvailable, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (r *MenuRepository) Update(ctx context.Context, m domain.MenuItem) error {
	tag, err := r.db.Exec(ctx, `
UPDATE menu_items
SET name=$2, description=$3, price=$4, category=$5, image=$6, is_veg=$7, is_available=$8, updated_at=now()
WHERE id=$1
`, m.ID, m.Name, m.Description, m.Price, m.Category, m.Image, m.IsVeg, m.IsAvailable)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *MenuRepository) ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error) {
	m, err := scanMenuItem(r.db.QueryRow(ctx, `
UPDATE menu_items SET is_available = NOT is_available, updated_at=now()
WHERE id=$1
RETURNING `+menuColumns, id))
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("menu item %s: %w", id, err)
	}
	return m, nil
}

func (r *MenuRepository) SetImage(ctx context.Context, id, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE menu_items SET image=$2, updated_at=now() WHERE id=$1`, id, url)
	if err != nil {
		return fmt.Errorf("set menu image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Names returns every item name, lower-cased.
func (r *MenuRepository) Names(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT lower(name) FROM menu_items`)
	if err != nil {
		return nil, fmt.Errorf("list menu names: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out[n] = true
	}
	return out, rows.Err()
}

func (r *MenuRepository) ListReviews(ctx context.Context, itemID string) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, menu_item_id, user_id, user_name, rating, comment, created_at
FROM menu_reviews WHERE menu_item_id=$1
ORDER BY created_at DESC
`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.MenuItemID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *MenuRepository) AddReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO menu_reviews (id, menu_item_id, user_id, user_name, rating, comment, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, rv.ID, rv.MenuItemID, rv.UserID, rv.UserName, rv.Rating, rv.Comment, rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}
