package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"sync"

	cartstore "xoned-commerce/internal/cart"
	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/pricing"
)

type Service struct {
	storage  storage
	products productLookup
	pricing  pricing.Calculator
	logger   *log.Logger

	locks sync.Map
}

type storage interface {
	cartstore.Storage
	Delete(ctx context.Context, key string) error
}

type productLookup interface {
	GetActive(ctx context.Context, id string) (*domain.Product, error)
}

func New(storage storage, products productLookup, calc pricing.Calculator, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{storage: storage, products: products, pricing: calc, logger: logger}
}

// View is the cart as returned to the storefront.
type View struct {
	Items     []domain.CartLineItem `json:"items"`
	ItemCount int                   `json:"itemCount"`
	Summary   pricing.Summary       `json:"summary"`
}

type AddInput struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (s *Service) Get(ctx context.Context, sessionID string) (*View, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(store), nil
}

// Add puts one unit of the product in the requested variant into the cart.
// Name, price and image come from the catalog, never from the caller.
func (s *Service) Add(ctx context.Context, sessionID string, in AddInput) (*View, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.NewValidationError("productId", "product id required")
	}
	p, err := s.products.GetActive(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("productId", "product not available")
		}
		return nil, err
	}
	if p.Status != domain.ProductStatusActive || !p.InStock() {
		return nil, domain.NewValidationError("productId", "product is out of stock")
	}
	size := strings.TrimSpace(in.Size)
	color := strings.TrimSpace(in.Color)
	if len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size) {
		return nil, domain.NewValidationError("size", fmt.Sprintf("size %q not offered", size))
	}
	if len(p.Colors) > 0 && !slices.Contains(p.Colors, color) {
		return nil, domain.NewValidationError("color", fmt.Sprintf("color %q not offered", color))
	}

	unlock := s.lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	item := domain.CartLineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.PrimaryImage(),
		Category:  p.Category,
		Size:      size,
		Color:     color,
	}
	if err := store.AddItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Printf("cart: add session=%s product=%s size=%s color=%s", sessionID, p.ID, size, color)
	return s.view(store), nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, key domain.LineKey) (*View, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.RemoveItem(ctx, key); err != nil {
		return nil, err
	}
	return s.view(store), nil
}

// UpdateQuantity sets the line quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, key domain.LineKey, quantity int) (*View, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateQuantity(ctx, key, quantity); err != nil {
		return nil, err
	}
	return s.view(store), nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}

// Checkout hands the cart lines to place while the session is locked, so
// nothing added during placement is lost. The cart is cleared when place
// succeeds and asks for it; a failed clear is logged since the order stands.
func (s *Service) Checkout(ctx context.Context, sessionID string, place func([]domain.CartLineItem) (placed bool, err error)) error {
	unlock := s.lock(sessionID)
	defer unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	placed, err := place(store.Items())
	if err != nil || !placed {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		s.logger.Printf("cart: clear after checkout session=%s error=%v", sessionID, err)
	}
	return nil
}

// Forget drops the stored cart of an ended session along with its lock.
func (s *Service) Forget(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	err := s.storage.Delete(ctx, cartstore.SessionKey(sessionID))
	unlock()
	s.locks.Delete(sessionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*cartstore.Store, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return cartstore.Load(ctx, s.storage, cartstore.SessionKey(sessionID), s.logger)
}

func (s *Service) view(store *cartstore.Store) *View {
	return &View{
		Items:     store.Items(),
		ItemCount: store.ItemCount(),
		Summary:   s.pricing.Quote(store.Subtotal()),
	}
}

// lock serializes read-modify-write cycles on one session's cart.
func (s *Service) lock(sessionID string) func() {
	m, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
