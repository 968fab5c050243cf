package capsule

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const selectCapsules = `
SELECT c.id::text, c.name, c.description, c.cover_image, COUNT(p.id)::int, c.created_at
FROM capsules c
LEFT JOIN products p ON p.capsule_id = c.id
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Capsule, error) {
	rows, err := r.pool.Query(ctx, selectCapsules+`GROUP BY c.id ORDER BY c.created_at DESC, c.name ASC`)
	if err != nil {
		r.logger.Printf("capsule repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Capsule{}
	for rows.Next() {
		var c domain.Capsule
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CoverImage, &c.ProductCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Capsule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var c domain.Capsule
	err := r.pool.QueryRow(ctx, selectCapsules+`WHERE c.id = $1 GROUP BY c.id`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CoverImage, &c.ProductCount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("capsule repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Capsule) (*domain.Capsule, error) {
	const q = `
INSERT INTO capsules (name, description, cover_image)
VALUES ($1, $2, $3)
RETURNING id::text, created_at
`
	out := c
	out.ProductCount = 0
	if err := r.pool.QueryRow(ctx, q, c.Name, c.Description, c.CoverImage).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("capsule repo: create name=%q error=%v", c.Name, err)
		return nil, err
	}
	r.logger.Printf("capsule repo: created id=%s", out.ID)
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Capsule) (*domain.Capsule, error) {
	if _, err := uuid.Parse(c.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE capsules
SET name = $2, description = $3, cover_image = $4
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, c.ID, c.Name, c.Description, c.CoverImage)
	if err != nil {
		r.logger.Printf("capsule repo: update id=%s error=%v", c.ID, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, c.ID)
}

// Delete removes only the capsule row; products keep their capsule id.
func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM capsules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("capsule repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM capsules`).Scan(&n)
	return n, err
}
