package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"xoned-commerce/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectOrders = `
SELECT id, customer_id, customer_name, customer_email, shipping_address, items,
       total_amount, shipping_amount, tax_amount, status, payment_status, payment_method, created_at
FROM orders
`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.ShippingAddress, &o.Items,
		&o.TotalAmount, &o.ShippingAmount, &o.TaxAmount, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CreatedAt)
	return o, err
}

func (r *postgresRepo) NextSequence(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		r.logger.Printf("order repo: next sequence error=%v", err)
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	const q = `
INSERT INTO orders (id, customer_id, customer_name, customer_email, shipping_address, items,
                    total_amount, shipping_amount, tax_amount, status, payment_status, payment_method, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`
	_, err := r.pool.Exec(ctx, q, o.ID, o.CustomerID, o.CustomerName, o.CustomerEmail, o.ShippingAddress, o.Items,
		o.TotalAmount, o.ShippingAmount, o.TaxAmount, o.Status, o.PaymentStatus, o.PaymentMethod, o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: create id=%s error=%v", o.ID, err)
		return err
	}
	r.logger.Printf("order repo: created id=%s items=%d total=%d", o.ID, len(o.Items), o.TotalAmount)
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrders+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, selectOrders+`ORDER BY created_at DESC, id DESC`)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.query(ctx, selectOrders+`WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`, customerID)
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		r.logger.Printf("order repo: update status id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	r.logger.Printf("order repo: status id=%s from=%s to=%s", id, from, to)
	return nil
}

func (r *postgresRepo) UpdatePaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET payment_status = $3 WHERE id = $1 AND payment_status = $2`, id, from, to)
	if err != nil {
		r.logger.Printf("order repo: update payment id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id)
	}
	r.logger.Printf("order repo: payment id=%s from=%s to=%s", id, from, to)
	return nil
}

func (r *postgresRepo) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}
