package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"xoned-commerce/internal/domain"
)

// PaymentRequest describes one online charge.
type PaymentRequest struct {
	OrderID  string
	Amount   int64
	Currency string
	Email    string
	Phone    string
}

type PaymentResult struct {
	Status    domain.PaymentStatus
	Reference string
}

// PaymentGateway charges online orders. A declined charge is a result with
// PaymentStatusFailed; an error means the outcome is unknown.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// SimulatedGateway approves every charge after Delay.
type SimulatedGateway struct {
	Delay time.Duration
}

func (g SimulatedGateway) Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return PaymentResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	return PaymentResult{Status: domain.PaymentStatusPaid, Reference: "pay_" + uuid.NewString()}, nil
}
