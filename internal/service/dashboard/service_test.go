package dashboard

import (
	"context"
	"errors"
	"testing"

	"xoned-commerce/internal/domain"
)

type stubOrders struct {
	orders []domain.Order
	err    error
}

func (s stubOrders) List(_ context.Context) ([]domain.Order, error) { return s.orders, s.err }

type stubCounter int

func (c stubCounter) Count(_ context.Context) (int, error) { return int(c), nil }

func TestSummarize(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", TotalAmount: 10000, Status: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusPending},
		{ID: "b", TotalAmount: 20000, Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid},
		{ID: "c", TotalAmount: 99999, Status: domain.OrderStatusCancelled, PaymentStatus: domain.PaymentStatusPending},
		{ID: "d", TotalAmount: 5001, Status: domain.OrderStatusShipped, PaymentStatus: domain.PaymentStatusPaid},
	}
	st := Summarize(orders)
	if st.TotalOrders != 4 {
		t.Fatalf("expected 4 orders, got %d", st.TotalOrders)
	}
	if st.Revenue != 35001 {
		t.Fatalf("cancelled orders must not count, revenue=%d", st.Revenue)
	}
	if st.AverageOrderValue != 11667 {
		t.Fatalf("unexpected average %d", st.AverageOrderValue)
	}
	if st.OrdersByStatus[domain.OrderStatusCancelled] != 1 || st.OrdersByStatus[domain.OrderStatusProcessing] != 0 {
		t.Fatalf("unexpected status counts %v", st.OrdersByStatus)
	}
	if st.PendingPayments != 1 {
		t.Fatalf("expected 1 pending payment, got %d", st.PendingPayments)
	}
	if len(st.RecentOrders) != 4 {
		t.Fatalf("expected all orders as recent, got %d", len(st.RecentOrders))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil)
	if st.TotalOrders != 0 || st.AverageOrderValue != 0 || len(st.OrdersByStatus) != 5 {
		t.Fatalf("unexpected empty stats %+v", st)
	}
}

func TestStats(t *testing.T) {
	svc := New(stubOrders{orders: []domain.Order{{ID: "a", TotalAmount: 100, Status: domain.OrderStatusPending}}}, stubCounter(8), stubCounter(3))
	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalProducts != 8 || st.TotalCapsules != 3 || st.Revenue != 100 {
		t.Fatalf("unexpected stats %+v", st)
	}

	svc = New(stubOrders{err: errors.New("db down")}, stubCounter(0), stubCounter(0))
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
