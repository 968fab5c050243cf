package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/pricing"
	orderrepo "xoned-commerce/internal/repository/order"
)

const idPrefix = "XND"

type Service struct {
	repo     orderrepo.Repository
	carts    cartSource
	products productLookup
	pricing  pricing.Calculator
	gateway  PaymentGateway
	currency string
	validate *validator.Validate
	logger   *log.Logger
	now      func() time.Time
}

type cartSource interface {
	Checkout(ctx context.Context, sessionID string, place func([]domain.CartLineItem) (placed bool, err error)) error
}

type productLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo orderrepo.Repository, carts cartSource, products productLookup, calc pricing.Calculator, gateway PaymentGateway, currency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if gateway == nil {
		gateway = SimulatedGateway{}
	}
	return &Service{
		repo:     repo,
		carts:    carts,
		products: products,
		pricing:  calc,
		gateway:  gateway,
		currency: currency,
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

type CheckoutInput struct {
	Shipping      domain.ShippingAddress `json:"shipping"`
	PaymentMethod domain.PaymentMethod   `json:"paymentMethod"`
}

// ListFilter narrows the admin order list. Empty fields match all.
type ListFilter struct {
	Search string
	Status domain.OrderStatus
}

// Checkout turns the session cart into an order. A declined online payment
// is recorded on the order and the cart is kept for another attempt.
func (s *Service) Checkout(ctx context.Context, sessionID string, identity *auth.Identity, in CheckoutInput) (*domain.Order, error) {
	shipping, err := normalizeShipping(s.validate, in.Shipping)
	if err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, domain.NewValidationError("paymentMethod", fmt.Sprintf("unknown payment method %q", in.PaymentMethod))
	}

	var placed *domain.Order
	err = s.carts.Checkout(ctx, sessionID, func(lines []domain.CartLineItem) (bool, error) {
		order, err := s.place(ctx, sessionID, identity, shipping, in.PaymentMethod, lines)
		if err != nil {
			return false, err
		}
		placed = order
		return order.PaymentStatus != domain.PaymentStatusFailed, nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// place snapshots the cart lines, runs the payment step and persists the
// order.
func (s *Service) place(ctx context.Context, sessionID string, identity *auth.Identity, shipping domain.ShippingAddress, method domain.PaymentMethod, lines []domain.CartLineItem) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("cart", "cart is empty")
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			CapsuleName: s.capsuleName(ctx, line.ProductID),
			Size:        line.Size,
			Color:       line.Color,
			Image:       line.Image,
			Price:       line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	total := domain.ItemsTotal(items)
	quote := s.pricing.Quote(total)

	now := s.now().UTC()
	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}

	order := domain.Order{
		ID:              FormatID(now.Year(), seq),
		CustomerName:    shipping.FirstName + " " + shipping.LastName,
		CustomerEmail:   shipping.Email,
		ShippingAddress: shipping,
		Items:           items,
		TotalAmount:     total,
		ShippingAmount:  quote.Shipping,
		TaxAmount:       quote.Tax,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   method,
		CreatedAt:       now,
	}
	if identity != nil {
		order.CustomerID = identity.UserID
	}

	if order.PaymentMethod == domain.PaymentMethodOnline {
		res, err := s.gateway.Charge(ctx, PaymentRequest{
			OrderID:  order.ID,
			Amount:   order.AmountDue(),
			Currency: s.currency,
			Email:    shipping.Email,
			Phone:    shipping.Phone,
		})
		if err != nil {
			s.logger.Printf("order: payment error order_id=%s error=%v", order.ID, err)
			return nil, fmt.Errorf("payment: %w", err)
		}
		order.PaymentStatus = res.Status
		s.logger.Printf("order: payment order_id=%s status=%s reference=%s", order.ID, res.Status, res.Reference)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Printf("order: placed order_id=%s session=%s method=%s payment=%s due=%d", order.ID, sessionID, order.PaymentMethod, order.PaymentStatus, order.AmountDue())

	return &order, nil
}

// FormatID renders an order number such as XND-2026-000042.
func FormatID(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", idPrefix, year, seq)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// GetForCustomer returns the order only when identity placed it.
func (s *Service) GetForCustomer(ctx context.Context, identity *auth.Identity, id string) (*domain.Order, error) {
	if err := auth.RequireUser(identity); err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if o.CustomerID != identity.UserID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown order status %q", f.Status))
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ID), search) &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), search) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Service) ListForCustomer(ctx context.Context, identity *auth.Identity) ([]domain.Order, error) {
	if err := auth.RequireUser(identity); err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, identity.UserID)
}

// UpdateStatus applies one lifecycle transition.
func (s *Service) UpdateStatus(ctx context.Context, id string, target domain.OrderStatus) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Status.CheckTransition(target); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, o.Status, target); err != nil {
		return nil, err
	}
	s.logger.Printf("order: status order_id=%s from=%s to=%s", id, o.Status, target)
	o.Status = target
	return o, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, target domain.PaymentStatus) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.PaymentStatus.CheckTransition(target); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, o.PaymentStatus, target); err != nil {
		return nil, err
	}
	s.logger.Printf("order: payment order_id=%s from=%s to=%s", id, o.PaymentStatus, target)
	o.PaymentStatus = target
	return o, nil
}

func (s *Service) capsuleName(ctx context.Context, productID string) string {
	if s.products == nil {
		return ""
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return ""
	}
	return p.CapsuleName
}
