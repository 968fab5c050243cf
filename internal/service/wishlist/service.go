package wishlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	cartstore "xoned-commerce/internal/cart"
	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/wishlist"
)

type Service struct {
	storage  storage
	products productLookup
	logger   *log.Logger
	locks    sync.Map
}

type storage interface {
	cartstore.Storage
	Delete(ctx context.Context, key string) error
}

type productLookup interface {
	GetActive(ctx context.Context, id string) (*domain.Product, error)
}

func New(storage storage, products productLookup, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{storage: storage, products: products, logger: logger}
}

func (s *Service) List(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	l, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return l.Items(), nil
}

// Toggle saves the product, or removes it when already saved. It reports
// whether the product is saved afterwards.
func (s *Service) Toggle(ctx context.Context, sessionID, productID string) (bool, error) {
	productID = strings.TrimSpace(productID)
	unlock := s.lock(sessionID)
	defer unlock()

	l, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if l.Contains(productID) {
		return false, l.Remove(ctx, productID)
	}
	if err := s.add(ctx, l, productID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Add(ctx context.Context, sessionID, productID string) ([]domain.WishlistItem, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	l, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, l, strings.TrimSpace(productID)); err != nil {
		return nil, err
	}
	return l.Items(), nil
}

func (s *Service) Remove(ctx context.Context, sessionID, productID string) ([]domain.WishlistItem, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	l, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := l.Remove(ctx, productID); err != nil {
		return nil, err
	}
	return l.Items(), nil
}

func (s *Service) add(ctx context.Context, l *wishlist.List, productID string) error {
	if productID == "" {
		return domain.NewValidationError("productId", "product id required")
	}
	p, err := s.products.GetActive(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("productId", "product not available")
		}
		return err
	}
	return l.Add(ctx, domain.WishlistItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.PrimaryImage(),
		Category:  p.Category,
		InStock:   p.InStock(),
	})
}

// Forget drops the stored wishlist of an ended session along with its lock.
func (s *Service) Forget(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	err := s.storage.Delete(ctx, wishlist.SessionKey(sessionID))
	unlock()
	s.locks.Delete(sessionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*wishlist.List, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return wishlist.Load(ctx, s.storage, wishlist.SessionKey(sessionID), s.logger)
}

func (s *Service) lock(sessionID string) func() {
	m, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
