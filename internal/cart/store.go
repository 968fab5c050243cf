package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"xoned-commerce/internal/domain"
)

// StorageKey is the fixed key the serialized cart lives under.
const StorageKey = "xoned-cart"

// SessionKey namespaces StorageKey by the owning session.
func SessionKey(sessionID string) string {
	return "session/" + sessionID + "/" + StorageKey
}

// Storage persists serialized values by key. Get returns domain.ErrNotFound
// when nothing was stored.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store owns the line items of one cart. Every mutation is flushed to storage
// before it becomes visible; a failed flush leaves the cart unchanged.
type Store struct {
	storage Storage
	key     string
	logger  *log.Logger
	items   []domain.CartLineItem
}

// Load rehydrates the cart stored under key. Missing or malformed content
// yields an empty cart.
func Load(ctx context.Context, storage Storage, key string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{storage: storage, key: key, logger: logger}

	raw, err := storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Printf("cart: discarding malformed content key=%s error=%v", key, err)
		return s, nil
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			logger.Printf("cart: discarding malformed content key=%s reason=invalid line", key)
			return s, nil
		}
	}
	s.items = items
	return s, nil
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// ItemCount is the sum of quantities, not the number of lines.
func (s *Store) ItemCount() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Subtotal() int64 {
	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// AddItem increments the quantity of the line with the same identity, or
// appends the item with quantity 1.
func (s *Store) AddItem(ctx context.Context, item domain.CartLineItem) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return domain.NewValidationError("productId", "product id required")
	}
	if item.UnitPrice < 0 {
		return domain.NewValidationError("price", "price must not be negative")
	}

	next := s.Items()
	if idx := s.indexOf(item.Key()); idx >= 0 {
		next[idx].Quantity++
	} else {
		item.Quantity = 1
		next = append(next, item)
	}
	return s.commit(ctx, next)
}

// RemoveItem deletes the line with exactly this identity.
func (s *Store) RemoveItem(ctx context.Context, key domain.LineKey) error {
	idx := s.indexOf(key)
	if idx < 0 {
		return domain.ErrNotFound
	}
	next := make([]domain.CartLineItem, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	return s.commit(ctx, next)
}

// UpdateQuantity sets the quantity of a line; anything below 1 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, key domain.LineKey, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, key)
	}
	idx := s.indexOf(key)
	if idx < 0 {
		return domain.ErrNotFound
	}
	next := s.Items()
	next[idx].Quantity = quantity
	return s.commit(ctx, next)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.commit(ctx, []domain.CartLineItem{})
}

func (s *Store) indexOf(key domain.LineKey) int {
	for i, it := range s.items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) commit(ctx context.Context, next []domain.CartLineItem) error {
	if next == nil {
		next = []domain.CartLineItem{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save cart %s: %w", s.key, err)
	}
	s.items = next
	return nil
}
