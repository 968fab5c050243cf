package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/repository/repotest"
)

func sampleOrder(id, customerID string) domain.Order {
	items := []domain.OrderItem{
		{ProductID: "p1", ProductName: "PHANTOM TEE", Size: "M", Color: "black", Price: 2499, Quantity: 2},
		{ProductID: "p3", ProductName: "NOIR BOOTS", Size: "42", Price: 9999, Quantity: 1},
	}
	return domain.Order{
		ID:            id,
		CustomerID:    customerID,
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.in",
		ShippingAddress: domain.ShippingAddress{
			FirstName: "Asha", LastName: "Rao", Email: "asha@example.in", Phone: "9876543210",
			Address: "12 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001",
		},
		Items:         items,
		TotalAmount:   domain.ItemsTotal(items),
		TaxAmount:     2700,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestPostgres_SequenceIsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(repotest.Pool(t), nil)
	a, err := repo.NextSequence(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	b, err := repo.NextSequence(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if b <= a {
		t.Fatalf("expected increasing sequence, got %d then %d", a, b)
	}
}

func TestPostgres_CreateAndRead(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(repotest.Pool(t), nil)

	o := sampleOrder("XND-2026-000001", "user_1")
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, o); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}
	_ = repo.Create(ctx, sampleOrder("XND-2026-000002", "user_2"))

	got, err := repo.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalAmount != 14997 || len(got.Items) != 2 || got.ShippingAddress.Pincode != "560001" {
		t.Fatalf("unexpected order %+v", got)
	}

	mine, err := repo.ListByCustomer(ctx, "user_1")
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != o.ID {
		t.Fatalf("unexpected customer orders %+v", mine)
	}
	all, err := repo.List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d err=%v", len(all), err)
	}
}

func TestPostgres_ConditionalStatusUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(repotest.Pool(t), nil)
	o := sampleOrder("XND-2026-000010", "")
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateStatus(ctx, o.ID, domain.OrderStatusPending, domain.OrderStatusProcessing); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.UpdateStatus(ctx, o.ID, domain.OrderStatusPending, domain.OrderStatusCancelled); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on stale status, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, "XND-2026-999999", domain.OrderStatusPending, domain.OrderStatusProcessing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.UpdatePaymentStatus(ctx, o.ID, domain.PaymentStatusPending, domain.PaymentStatusPaid); err != nil {
		t.Fatalf("update payment: %v", err)
	}

	got, _ := repo.GetByID(ctx, o.ID)
	if got.Status != domain.OrderStatusProcessing || got.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("unexpected order state %+v", got)
	}
}
