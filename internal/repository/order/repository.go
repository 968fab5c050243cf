package order

import (
	"context"

	"xoned-commerce/internal/domain"
)

type Repository interface {
	// NextSequence returns the next value of the order number sequence.
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, o domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	// UpdateStatus moves the order only while it is still in from. A stale
	// from yields domain.ErrConflict.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus) error
}
