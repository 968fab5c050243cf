package capsule

import (
	"context"

	"xoned-commerce/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Capsule, error)
	GetByID(ctx context.Context, id string) (*domain.Capsule, error)
	Create(ctx context.Context, c domain.Capsule) (*domain.Capsule, error)
	Update(ctx context.Context, c domain.Capsule) (*domain.Capsule, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
