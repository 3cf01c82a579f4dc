package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/domain"
)

type MessageRepositoryInterface interface {
	Create(ctx context.Context, m domain.Message) error
	List(ctx context.Context, status domain.MessageStatus) ([]domain.Message, error)
	SetStatus(ctx context.Context, id string, status domain.MessageStatus) error
	CountUnread(ctx context.Context) (int, error)
}

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) MessageRepositoryInterface {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m domain.Message) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO messages (id, name, email, phone, subject, body, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, m.Status, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) List(ctx context.Context, status domain.MessageStatus) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, name, email, phone, subject, body, status, created_at
FROM messages
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Message, error) {
		var m domain.Message
		err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &m.Status, &m.CreatedAt)
		return m, err
	})
}

func (r *MessageRepository) SetStatus(ctx context.Context, id string, status domain.MessageStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE messages SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *MessageRepository) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM messages WHERE status = 'unread'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}
