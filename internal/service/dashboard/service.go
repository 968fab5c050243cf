package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"xoned-commerce/internal/domain"
)

type orderLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

type Service struct {
	orders   orderLister
	products counter
	capsules counter
}

func New(orders orderLister, products, capsules counter) *Service {
	return &Service{orders: orders, products: products, capsules: capsules}
}

// Stats is the admin dashboard summary. Revenue sums the items total of
// every order that was not cancelled.
type Stats struct {
	TotalOrders       int                        `json:"totalOrders"`
	Revenue           int64                      `json:"revenue"`
	AverageOrderValue int64                      `json:"averageOrderValue"`
	OrdersByStatus    map[domain.OrderStatus]int `json:"ordersByStatus"`
	PendingPayments   int                        `json:"pendingPayments"`
	TotalProducts     int                        `json:"totalProducts"`
	TotalCapsules     int                        `json:"totalCapsules"`
	RecentOrders      []domain.Order             `json:"recentOrders"`
}

const recentOrders = 5

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		orders   []domain.Order
		products int
		capsules int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.products.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		capsules, err = s.capsules.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := Summarize(orders)
	st.TotalProducts = products
	st.TotalCapsules = capsules
	return st, nil
}

// Summarize computes the order figures of Stats. orders are expected newest
// first.
func Summarize(orders []domain.Order) *Stats {
	st := &Stats{
		TotalOrders:    len(orders),
		OrdersByStatus: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		RecentOrders:   []domain.Order{},
	}
	for _, status := range domain.OrderStatuses {
		st.OrdersByStatus[status] = 0
	}
	counted := 0
	for _, o := range orders {
		st.OrdersByStatus[o.Status]++
		if o.PaymentStatus == domain.PaymentStatusPending && o.Status != domain.OrderStatusCancelled {
			st.PendingPayments++
		}
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		st.Revenue += o.TotalAmount
		counted++
	}
	if counted > 0 {
		st.AverageOrderValue = st.Revenue / int64(counted)
	}
	n := min(len(orders), recentOrders)
	st.RecentOrders = append(st.RecentOrders, orders[:n]...)
	return st
}
