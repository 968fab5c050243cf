package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"xoned-commerce/internal/auth"
	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/pricing"
	"xoned-commerce/internal/repository/kv"
	cartsvc "xoned-commerce/internal/service/cart"
)

type stubRepo struct {
	seq        int64
	seqErr     error
	orders     map[string]domain.Order
	createErr  error
	updateErr  error
	createCall int
	onCreate   func()
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: map[string]domain.Order{}}
}

func (s *stubRepo) NextSequence(_ context.Context) (int64, error) {
	if s.seqErr != nil {
		return 0, s.seqErr
	}
	s.seq++
	return s.seq, nil
}

func (s *stubRepo) Create(_ context.Context, o domain.Order) error {
	s.createCall++
	if s.onCreate != nil {
		s.onCreate()
	}
	if s.createErr != nil {
		return s.createErr
	}
	s.orders[o.ID] = o
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (s *stubRepo) List(_ context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, id := range []string{"XND-2026-000003", "XND-2026-000002", "XND-2026-000001"} {
		if o, ok := s.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	o := s.orders[id]
	if o.Status != from {
		return domain.ErrConflict
	}
	o.Status = to
	s.orders[id] = o
	return nil
}

func (s *stubRepo) UpdatePaymentStatus(_ context.Context, id string, from, to domain.PaymentStatus) error {
	o := s.orders[id]
	if o.PaymentStatus != from {
		return domain.ErrConflict
	}
	o.PaymentStatus = to
	s.orders[id] = o
	return nil
}

type stubCart struct {
	items   []domain.CartLineItem
	loadErr error
	cleared bool
}

func (c *stubCart) Checkout(_ context.Context, _ string, place func([]domain.CartLineItem) (bool, error)) error {
	if c.loadErr != nil {
		return c.loadErr
	}
	clear, err := place(c.items)
	if err != nil {
		return err
	}
	c.cleared = clear
	return nil
}

type activeCatalog map[string]domain.Product

func (c activeCatalog) GetActive(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type stubProducts struct{}

func (stubProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	if id == "tee" {
		return &domain.Product{ID: "tee", CapsuleName: "VOID"}, nil
	}
	return nil, domain.ErrNotFound
}

type stubGateway struct {
	result PaymentResult
	err    error
	req    PaymentRequest
}

func (g *stubGateway) Charge(_ context.Context, req PaymentRequest) (PaymentResult, error) {
	g.req = req
	return g.result, g.err
}

func validShipping() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "Asha@Example.in",
		Phone:     "+91 98765 43210",
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
	}
}

func cartLines() []domain.CartLineItem {
	return []domain.CartLineItem{
		{ProductID: "tee", Name: "PHANTOM TEE", UnitPrice: 2499, Size: "M", Color: "black", Quantity: 2},
		{ProductID: "boots", Name: "NOIR BOOTS", UnitPrice: 9999, Size: "42", Quantity: 1},
	}
}

func newService(repo *stubRepo, carts *stubCart, gateway PaymentGateway) *Service {
	svc := New(repo, carts, stubProducts{}, pricing.Default(), gateway, "INR", nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestCheckoutCOD(t *testing.T) {
	repo := newStubRepo()
	carts := &stubCart{items: cartLines()}
	svc := newService(repo, carts, nil)

	o, err := svc.Checkout(context.Background(), "s1", &auth.Identity{UserID: "user_1"}, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodCOD})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.ID != "XND-2026-000001" {
		t.Fatalf("unexpected order id %s", o.ID)
	}
	if o.TotalAmount != 14997 || o.ShippingAmount != 500 || o.TaxAmount != 2699 {
		t.Fatalf("unexpected amounts %+v", o)
	}
	if o.AmountDue() != 14997+500+2699 {
		t.Fatalf("unexpected amount due %d", o.AmountDue())
	}
	if o.Status != domain.OrderStatusPending || o.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("unexpected statuses %s/%s", o.Status, o.PaymentStatus)
	}
	if o.CustomerID != "user_1" || o.CustomerName != "Asha Rao" || o.CustomerEmail != "asha@example.in" {
		t.Fatalf("unexpected customer fields %+v", o)
	}
	if o.ShippingAddress.Phone != "9876543210" {
		t.Fatalf("expected normalized phone, got %q", o.ShippingAddress.Phone)
	}
	if o.Items[0].CapsuleName != "VOID" || o.Items[1].CapsuleName != "" {
		t.Fatalf("unexpected capsule snapshot %+v", o.Items)
	}
	if !carts.cleared {
		t.Fatalf("expected cart cleared")
	}
	if _, ok := repo.orders[o.ID]; !ok {
		t.Fatalf("expected order persisted")
	}
}

func TestCheckoutOnlinePaid(t *testing.T) {
	repo := newStubRepo()
	carts := &stubCart{items: cartLines()}
	gw := &stubGateway{result: PaymentResult{Status: domain.PaymentStatusPaid, Reference: "pay_1"}}
	svc := newService(repo, carts, gw)

	o, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodOnline})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.PaymentStatus != domain.PaymentStatusPaid || o.CustomerID != "" {
		t.Fatalf("unexpected order %+v", o)
	}
	if gw.req.Amount != o.AmountDue() || gw.req.Currency != "INR" || gw.req.OrderID != o.ID {
		t.Fatalf("unexpected charge %+v", gw.req)
	}
	if !carts.cleared {
		t.Fatalf("expected cart cleared")
	}
}

func TestCheckoutOnlineDeclinedKeepsCart(t *testing.T) {
	repo := newStubRepo()
	carts := &stubCart{items: cartLines()}
	svc := newService(repo, carts, &stubGateway{result: PaymentResult{Status: domain.PaymentStatusFailed}})

	o, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodOnline})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.PaymentStatus != domain.PaymentStatusFailed {
		t.Fatalf("expected failed payment, got %s", o.PaymentStatus)
	}
	if carts.cleared {
		t.Fatalf("cart must be kept after a declined payment")
	}
}

func TestCheckoutGatewayErrorPersistsNothing(t *testing.T) {
	repo := newStubRepo()
	carts := &stubCart{items: cartLines()}
	svc := newService(repo, carts, &stubGateway{err: errors.New("timeout")})

	if _, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodOnline}); err == nil {
		t.Fatalf("expected error")
	}
	if repo.createCall != 0 || carts.cleared {
		t.Fatalf("nothing should be persisted or cleared")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo, &stubCart{}, nil)
	_, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodCOD})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.createCall != 0 {
		t.Fatalf("no order should be created")
	}
}

func TestCheckoutShippingValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*domain.ShippingAddress)
		field  string
	}{
		"missing first name": {func(a *domain.ShippingAddress) { a.FirstName = " " }, "firstName"},
		"bad email":          {func(a *domain.ShippingAddress) { a.Email = "asha@" }, "email"},
		"short phone":        {func(a *domain.ShippingAddress) { a.Phone = "98765" }, "phone"},
		"phone bad prefix":   {func(a *domain.ShippingAddress) { a.Phone = "5876543210" }, "phone"},
		"pincode leading 0":  {func(a *domain.ShippingAddress) { a.Pincode = "060001" }, "pincode"},
		"pincode letters":    {func(a *domain.ShippingAddress) { a.Pincode = "56000A" }, "pincode"},
		"missing city":       {func(a *domain.ShippingAddress) { a.City = "" }, "city"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newService(newStubRepo(), &stubCart{items: cartLines()}, nil)
			addr := validShipping()
			tc.mutate(&addr)
			_, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: addr, PaymentMethod: domain.PaymentMethodCOD})
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
}

func TestCheckoutUnknownPaymentMethod(t *testing.T) {
	svc := newService(newStubRepo(), &stubCart{items: cartLines()}, nil)
	_, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: "upi"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutCartLoadFailure(t *testing.T) {
	repo := newStubRepo()
	loadErr := errors.New("db down")
	svc := newService(repo, &stubCart{items: cartLines(), loadErr: loadErr}, nil)
	if _, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodCOD}); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	if repo.createCall != 0 {
		t.Fatalf("no order should be created")
	}
}

func TestCheckoutKeepsItemsAddedDuringPlacement(t *testing.T) {
	ctx := context.Background()
	carts := cartsvc.New(kv.NewMemory(), activeCatalog{
		"tee":    {ID: "tee", Name: "PHANTOM TEE", Price: 2499, Stock: 5, Status: domain.ProductStatusActive},
		"hoodie": {ID: "hoodie", Name: "VOID HOODIE", Price: 6999, Stock: 5, Status: domain.ProductStatusActive},
	}, pricing.Default(), nil)
	if _, err := carts.Add(ctx, "s1", cartsvc.AddInput{ProductID: "tee"}); err != nil {
		t.Fatalf("add tee: %v", err)
	}

	repo := newStubRepo()
	added := make(chan error, 1)
	repo.onCreate = func() {
		go func() {
			_, err := carts.Add(ctx, "s1", cartsvc.AddInput{ProductID: "hoodie"})
			added <- err
		}()
		time.Sleep(50 * time.Millisecond)
	}
	svc := New(repo, carts, stubProducts{}, pricing.Default(), nil, "INR", nil)

	o, err := svc.Checkout(ctx, "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodCOD})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if err := <-added; err != nil {
		t.Fatalf("add hoodie: %v", err)
	}

	if len(o.Items) != 1 || o.Items[0].ProductID != "tee" {
		t.Fatalf("unexpected order items %+v", o.Items)
	}
	view, err := carts.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "hoodie" {
		t.Fatalf("expected the later add to survive checkout, got %+v", view.Items)
	}
}

func TestStatusChangesKeepTotalAmount(t *testing.T) {
	repo := newStubRepo()
	carts := &stubCart{items: []domain.CartLineItem{
		{ProductID: "tee", Name: "PHANTOM TEE", UnitPrice: 8999, Quantity: 1},
		{ProductID: "boots", Name: "NOIR BOOTS", UnitPrice: 9999, Quantity: 1},
	}}
	svc := newService(repo, carts, nil)
	ctx := context.Background()

	o, err := svc.Checkout(ctx, "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodCOD})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.TotalAmount != 18998 {
		t.Fatalf("expected total 18998, got %d", o.TotalAmount)
	}

	for _, next := range []domain.OrderStatus{domain.OrderStatusProcessing, domain.OrderStatusShipped} {
		updated, err := svc.UpdateStatus(ctx, o.ID, next)
		if err != nil {
			t.Fatalf("update to %s: %v", next, err)
		}
		if updated.Status != next || updated.TotalAmount != 18998 {
			t.Fatalf("after %s: unexpected order %+v", next, updated)
		}
		if stored := repo.orders[o.ID]; stored.TotalAmount != 18998 || stored.Status != next {
			t.Fatalf("after %s: unexpected stored order %+v", next, stored)
		}
	}
}

func TestOrderIDsAreUnique(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo, &stubCart{items: cartLines()}, nil)
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		o, err := svc.Checkout(context.Background(), "s1", nil, CheckoutInput{Shipping: validShipping(), PaymentMethod: domain.PaymentMethodCOD})
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}
		if seen[o.ID] {
			t.Fatalf("duplicate id %s", o.ID)
		}
		seen[o.ID] = true
	}
	if FormatID(2026, 42) != "XND-2026-000042" {
		t.Fatalf("unexpected format %s", FormatID(2026, 42))
	}
}

func seededService() (*Service, *stubRepo) {
	repo := newStubRepo()
	repo.orders["XND-2026-000001"] = domain.Order{ID: "XND-2026-000001", CustomerID: "user_1", CustomerName: "Asha Rao", CustomerEmail: "asha@example.in", Status: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusPending}
	repo.orders["XND-2026-000002"] = domain.Order{ID: "XND-2026-000002", CustomerID: "user_2", CustomerName: "Vikram Shah", CustomerEmail: "vik@example.in", Status: domain.OrderStatusShipped, PaymentStatus: domain.PaymentStatusPaid}
	repo.orders["XND-2026-000003"] = domain.Order{ID: "XND-2026-000003", CustomerName: "Meera Iyer", CustomerEmail: "meera@example.in", Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid}
	return newService(repo, &stubCart{}, nil), repo
}

func TestListFilters(t *testing.T) {
	svc, _ := seededService()
	ctx := context.Background()
	cases := []struct {
		filter ListFilter
		want   int
	}{
		{ListFilter{}, 3},
		{ListFilter{Search: "000002"}, 1},
		{ListFilter{Search: "MEERA"}, 1},
		{ListFilter{Search: "example.in"}, 3},
		{ListFilter{Status: domain.OrderStatusShipped}, 1},
		{ListFilter{Search: "asha", Status: domain.OrderStatusShipped}, 0},
	}
	for _, tc := range cases {
		got, err := svc.List(ctx, tc.filter)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != tc.want {
			t.Fatalf("filter %+v: expected %d, got %d", tc.filter, tc.want, len(got))
		}
	}
	if _, err := svc.List(ctx, ListFilter{Status: "lost"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, repo := seededService()
	ctx := context.Background()

	o, err := svc.UpdateStatus(ctx, "XND-2026-000001", domain.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if o.Status != domain.OrderStatusProcessing || repo.orders["XND-2026-000001"].Status != domain.OrderStatusProcessing {
		t.Fatalf("status not applied")
	}
	if _, err := svc.UpdateStatus(ctx, "XND-2026-000001", domain.OrderStatusDelivered); !domain.IsValidation(err) {
		t.Fatalf("expected skip rejected, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "XND-2026-000003", domain.OrderStatusCancelled); !domain.IsValidation(err) {
		t.Fatalf("expected terminal rejected, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "XND-2026-000404", domain.OrderStatusCancelled); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	repo.updateErr = domain.ErrConflict
	if _, err := svc.UpdateStatus(ctx, "XND-2026-000002", domain.OrderStatusDelivered); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	svc, _ := seededService()
	ctx := context.Background()
	o, err := svc.UpdatePaymentStatus(ctx, "XND-2026-000001", domain.PaymentStatusPaid)
	if err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if o.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("payment not applied")
	}
	if _, err := svc.UpdatePaymentStatus(ctx, "XND-2026-000001", domain.PaymentStatusFailed); !domain.IsValidation(err) {
		t.Fatalf("expected paid to be terminal, got %v", err)
	}
}

func TestCustomerAccess(t *testing.T) {
	svc, _ := seededService()
	ctx := context.Background()

	if _, err := svc.ListForCustomer(ctx, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	mine, err := svc.ListForCustomer(ctx, &auth.Identity{UserID: "user_1"})
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected one order, got %d err=%v", len(mine), err)
	}
	if _, err := svc.GetForCustomer(ctx, &auth.Identity{UserID: "user_1"}, "XND-2026-000002"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected other customer's order hidden, got %v", err)
	}
}

func TestSimulatedGateway(t *testing.T) {
	res, err := SimulatedGateway{}.Charge(context.Background(), PaymentRequest{OrderID: "x", Amount: 100})
	if err != nil || res.Status != domain.PaymentStatusPaid || res.Reference == "" {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (SimulatedGateway{Delay: time.Second}).Charge(ctx, PaymentRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+91 98765 43210": "9876543210",
		"919876543210":    "9876543210",
		"09876543210":     "9876543210",
		"98765-43210":     "9876543210",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMustRegisterPanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for empty tag")
		}
	}()
	mustRegister(newValidator(), "", func(validator.FieldLevel) bool { return true })
}

func TestCustomTagsAreRegistered(t *testing.T) {
	v := newValidator()
	if err := v.Var("9876543210", "inphone"); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}
	if err := v.Var("5876543210", "inphone"); err == nil {
		t.Fatalf("expected phone starting with 5 rejected")
	}
	if err := v.Var("560001", "pincode"); err != nil {
		t.Fatalf("expected valid pincode, got %v", err)
	}
	if err := v.Var("060001", "pincode"); err == nil {
		t.Fatalf("expected pincode starting with 0 rejected")
	}
}
