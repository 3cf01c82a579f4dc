package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/domain"
)

type AccountRepositoryInterface interface {
	Get(ctx context.Context, id string) (domain.User, error)
	Ensure(ctx context.Context, u domain.User) error
	UpdateProfile(ctx context.Context, u domain.User) error
	SetPhoto(ctx context.Context, id, url string) error

	UpsertToken(ctx context.Context, t domain.DeviceToken) error
	AdminTokens(ctx context.Context) ([]string, error)
	UserTokens(ctx context.Context, userID string) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
}

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) AccountRepositoryInterface {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var (
		u    domain.User
		addr domain.Address
	)
	err := r.db.QueryRow(ctx, `
SELECT id, name, email, phone, alternative_phone, photo_url,
       street, city, pincode, landmark, is_admin, created_at, updated_at
FROM users WHERE id = $1
`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.AlternativePhone, &u.PhotoURL,
		&addr.Street, &addr.City, &addr.Pincode, &addr.Landmark, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	if addr != (domain.Address{}) {
		u.Address = &addr
	}
	return u, nil
}

// Ensure creates the user row on first sight. Later calls only refresh
// the admin flag and fill blanks from the token claims.
func (r *AccountRepository) Ensure(ctx context.Context, u domain.User) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO users (id, name, email, phone, is_admin)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET is_admin = EXCLUDED.is_admin,
    name  = CASE WHEN users.name  = '' THEN EXCLUDED.name  ELSE users.name  END,
    email = CASE WHEN users.email = '' THEN EXCLUDED.email ELSE users.email END,
    phone = CASE WHEN users.phone = '' THEN EXCLUDED.phone ELSE users.phone END
WHERE users.is_admin <> EXCLUDED.is_admin
   OR (users.name = '' AND EXCLUDED.name <> '')
   OR (users.email = '' AND EXCLUDED.email <> '')
   OR (users.phone = '' AND EXCLUDED.phone <> '')
`, u.ID, u.Name, u.Email, u.Phone, u.IsAdmin)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, u domain.User) error {
	var addr domain.Address
	if u.Address != nil {
		addr = *u.Address
	}
	tag, err := r.db.Exec(ctx, `
UPDATE users
SET name = $2, phone = $3, alternative_phone = $4,
    street = $5, city = $6, pincode = $7, landmark = $8, updated_at = $9
WHERE id = $1
`, u.ID, u.Name, u.Phone, u.AlternativePhone,
		addr.Street, addr.City, addr.Pincode, addr.Landmark, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *AccountRepository) SetPhoto(ctx context.Context, id, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET photo_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("set photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpsertToken keys on the token value, so a browser that changes hands
// moves to the new owner.
func (r *AccountRepository) UpsertToken(ctx context.Context, t domain.DeviceToken) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO device_tokens (token, user_id, platform, is_admin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (token) DO UPDATE
SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform,
    is_admin = EXCLUDED.is_admin, updated_at = EXCLUDED.updated_at
`, t.Token, t.UserID, t.Platform, t.IsAdmin, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert device token: %w", err)
	}
	return nil
}

func (r *AccountRepository) tokens(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("load device tokens: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *AccountRepository) AdminTokens(ctx context.Context) ([]string, error) {
	return r.tokens(ctx, `SELECT token FROM device_tokens WHERE is_admin ORDER BY updated_at DESC`)
}

func (r *AccountRepository) UserTokens(ctx context.Context, userID string) ([]string, error) {
	return r.tokens(ctx, `SELECT token FROM device_tokens WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
}

func (r *AccountRepository) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM device_tokens WHERE token = ANY($1)`, tokens)
	if err != nil {
		return 0, fmt.Errorf("delete device tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

