package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
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

const selectProducts = `
SELECT p.id::text, p.key, p.name, p.description, p.price, p.capsule_id::text, COALESCE(c.name, ''),
       p.category, p.images, p.sizes, p.colors, p.tags, p.stock, p.status, p.is_featured, p.is_new, p.created_at
FROM products p
LEFT JOIN capsules c ON c.id = p.capsule_id
`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Description, &p.Price, &p.CapsuleID, &p.CapsuleName,
		&p.Category, &p.Images, &p.Sizes, &p.Colors, &p.Tags, &p.Stock, &p.Status, &p.IsFeatured, &p.IsNew, &p.CreatedAt)
	return p, err
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, selectProducts+`ORDER BY p.created_at DESC, p.name ASC`)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProducts+`WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (key, name, description, price, capsule_id, category, images, sizes, colors, tags, stock, status, is_featured, is_new)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q, p.Key, p.Name, p.Description, p.Price, p.CapsuleID, p.Category,
		nonNil(p.Images), nonNil(p.Sizes), nonNil(p.Colors), nonNil(p.Tags), p.Stock, p.Status, p.IsFeatured, p.IsNew).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create key=%s error=%v", p.Key, err)
		return nil, err
	}
	r.logger.Printf("product repo: created key=%s id=%s", p.Key, id)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE products
SET name = $2, description = $3, price = $4, capsule_id = $5, category = $6, images = $7, sizes = $8,
    colors = $9, tags = $10, stock = $11, status = $12, is_featured = $13, is_new = $14
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price, p.CapsuleID, p.Category,
		nonNil(p.Images), nonNil(p.Sizes), nonNil(p.Colors), nonNil(p.Tags), p.Stock, p.Status, p.IsFeatured, p.IsNew)
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (key, name, description, price, capsule_id, category, images, sizes, colors, tags, stock, status, is_featured, is_new)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    capsule_id = EXCLUDED.capsule_id,
    category = EXCLUDED.category,
    images = EXCLUDED.images,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors,
    tags = EXCLUDED.tags,
    stock = EXCLUDED.stock,
    status = EXCLUDED.status,
    is_featured = EXCLUDED.is_featured,
    is_new = EXCLUDED.is_new
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q, p.Key, p.Name, p.Description, p.Price, p.CapsuleID, p.Category,
		nonNil(p.Images), nonNil(p.Sizes), nonNil(p.Colors), nonNil(p.Tags), p.Stock, p.Status, p.IsFeatured, p.IsNew).Scan(&id)
	if err != nil {
		r.logger.Printf("product repo: upsert key=%s error=%v", p.Key, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted key=%s id=%s", p.Key, id)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) SetFeatured(ctx context.Context, id string, featured bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET is_featured = $2 WHERE id = $1`, id, featured)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM products`).Scan(&n)
	return n, err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
