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

// ListFilter narrows admin order listings. Zero values mean "no bound".
type ListFilter struct {
	From          time.Time
	Before        time.Time
	Status        domain.OrderStatus
	CountableOnly bool
}

// Mutator edits a locked order in place and reports whether anything
// changed. Returning false commits nothing.
type Mutator func(o *domain.Order) (bool, error)

type OrderRepositoryInterface interface {
	Create(ctx context.Context, o *domain.Order, changedBy string) error
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, error)
	SetGatewayOrder(ctx context.Context, id, gatewayOrderID string) error
	Transition(ctx context.Context, id, changedBy, notes string, fn Mutator) (domain.Order, error)
	Timeline(ctx context.Context, id string) ([]domain.StatusChange, error)

	MarkNotified(ctx context.Context, id string, at time.Time) error
	SetCallStatus(ctx context.Context, id, status, callErr string, at time.Time) error
}

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, user_name, user_email, user_phone,
subtotal, delivery_fee, total_amount, street, city, pincode, landmark,
status, payment_method, payment_status, payment_id, gateway_order_id,
notification_sent, notification_at, call_status, call_error, created_at, updated_at`

const countableClause = `(payment_method = 'COD' OR (payment_method = 'ONLINE' AND payment_status = 'success'))`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.UserName, &o.UserEmail, &o.UserPhone,
		&o.Subtotal, &o.DeliveryFee, &o.TotalAmount,
		&o.Address.Street, &o.Address.City, &o.Address.Pincode, &o.Address.Landmark,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.PaymentID, &o.GatewayOrderID,
		&o.NotificationSent, &o.NotificationAt, &o.CallStatus, &o.CallError, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, err
}

// FormatOrderNumber renders ORD_YYYYMMDD_NNNNNN.
func FormatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("ORD_%s_%06d", day.Format("20060102"), seq)
}

// Create stores the order, its items and the first status log entry in one
// transaction. It fills in o.OrderNumber.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order, changedBy string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var seq int64
	if err = tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("next order number: %w", err)
	}
	o.OrderNumber = FormatOrderNumber(o.CreatedAt, seq)

	_, err = tx.Exec(ctx, `
INSERT INTO orders (id, order_number, user_id, user_name, user_email, user_phone,
    subtotal, delivery_fee, total_amount, street, city, pincode, landmark,
    status, payment_method, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
`, o.ID, o.OrderNumber, o.UserID, o.UserName, o.UserEmail, o.UserPhone,
		o.Subtotal, o.DeliveryFee, o.TotalAmount,
		o.Address.Street, o.Address.City, o.Address.Pincode, o.Address.Landmark,
		o.Status, o.PaymentMethod, o.PaymentStatus, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
INSERT INTO order_items (order_id, menu_item_id, name, price, quantity, image)
VALUES ($1, $2, $3, $4, $5, $6)
`, o.ID, it.MenuItemID, it.Name, it.Price, it.Quantity, it.Image)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", it.Name, err)
		}
	}

	if err = logStatus(ctx, tx, o.ID, o.Status, changedBy, "order placed", o.CreatedAt); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func logStatus(ctx context.Context, tx pgx.Tx, orderID string, st domain.OrderStatus, by, notes string, at time.Time) error {
	_, err := tx.Exec(ctx, `
INSERT INTO order_status_log (order_id, status, changed_by, notes, changed_at)
VALUES ($1, $2, $3, $4, $5)
`, orderID, st, by, notes, at)
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	items, err := r.items(ctx, r.db, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *OrderRepository) items(ctx context.Context, q querier, ids []string) (map[string][]domain.OrderItem, error) {
	out := make(map[string][]domain.OrderItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
SELECT order_id, menu_item_id, name, price, quantity, image
FROM order_items
WHERE order_id = ANY($1)
ORDER BY id
`, ids)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID string
			it      domain.OrderItem
		)
		if err := rows.Scan(&orderID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.Image); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (r *OrderRepository) collect(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	out := []domain.Order{}
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	items, err := r.items(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
		if out[i].Items == nil {
			out[i].Items = []domain.OrderItem{}
		}
	}
	return out, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return r.collect(ctx, rows)
}

func (r *OrderRepository) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	var (
		from, before *time.Time
		status       string
	)
	if !f.From.IsZero() {
		from = &f.From
	}
	if !f.Before.IsZero() {
		before = &f.Before
	}
	status = string(f.Status)

	rows, err := r.db.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at < $2)
  AND ($3 = '' OR status = $3)
  AND (NOT $4 OR `+countableClause+`)
ORDER BY created_at DESC
`, from, before, status, f.CountableOnly)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.collect(ctx, rows)
}

func (r *OrderRepository) SetGatewayOrder(ctx context.Context, id, gatewayOrderID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET gateway_order_id = $2, updated_at = now() WHERE id = $1`, id, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("set gateway order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Transition locks the order row, lets fn edit it and writes the result
// back. A status change is appended to the status log.
func (r *OrderRepository) Transition(ctx context.Context, id, changedBy, notes string, fn Mutator) (o domain.Order, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	o, err = scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
		}
		return domain.Order{}, fmt.Errorf("lock order: %w", err)
	}
	items, err := r.items(ctx, tx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]

	prev := o.Status
	changed, err := fn(&o)
	if err != nil {
		return domain.Order{}, err
	}
	if !changed {
		err = tx.Rollback(ctx)
		return o, err
	}

	o.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
UPDATE orders
SET status = $2, payment_status = $3, payment_id = $4, gateway_order_id = $5, updated_at = $6
WHERE id = $1
`, o.ID, o.Status, o.PaymentStatus, o.PaymentID, o.GatewayOrderID, o.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}
	if o.Status != prev {
		if err = logStatus(ctx, tx, o.ID, o.Status, changedBy, notes, o.UpdatedAt); err != nil {
			return domain.Order{}, err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit transition: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) Timeline(ctx context.Context, id string) ([]domain.StatusChange, error) {
	rows, err := r.db.Query(ctx, `
SELECT status, changed_by, notes, changed_at
FROM order_status_log
WHERE order_id = $1
ORDER BY changed_at, id
`, id)
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}
	defer rows.Close()

	out := []domain.StatusChange{}
	for rows.Next() {
		var c domain.StatusChange
		if err := rows.Scan(&c.Status, &c.ChangedBy, &c.Notes, &c.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *OrderRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET notification_sent = TRUE, notification_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *OrderRepository) SetCallStatus(ctx context.Context, id, status, callErr string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
UPDATE orders
SET call_status = $2, call_error = $3, call_completed_at = $4, updated_at = $4
WHERE id = $1
`, id, status, callErr, at)
	if err != nil {
		return fmt.Errorf("set call status: %w", err)
	}
	return nil
}
