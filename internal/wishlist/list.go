package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"xoned-commerce/internal/cart"
	"xoned-commerce/internal/domain"
)

const StorageKey = "xoned-wishlist"

func SessionKey(sessionID string) string {
	return "session/" + sessionID + "/" + StorageKey
}

// List is a deduplicated set of saved products, persisted like the cart.
type List struct {
	storage cart.Storage
	key     string
	items   []domain.WishlistItem
}

func Load(ctx context.Context, storage cart.Storage, key string, logger *log.Logger) (*List, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	l := &List{storage: storage, key: key}

	raw, err := storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return l, nil
		}
		return nil, fmt.Errorf("load wishlist %s: %w", key, err)
	}
	var items []domain.WishlistItem
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Printf("wishlist: discarding malformed content key=%s error=%v", key, err)
		return l, nil
	}
	l.items = items
	return l, nil
}

func (l *List) Items() []domain.WishlistItem {
	out := make([]domain.WishlistItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Contains(productID string) bool {
	return l.indexOf(productID) >= 0
}

// Add stores the item unless the product is already saved.
func (l *List) Add(ctx context.Context, item domain.WishlistItem) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return domain.NewValidationError("productId", "product id required")
	}
	if l.Contains(item.ProductID) {
		return nil
	}
	next := append(l.Items(), item)
	return l.commit(ctx, next)
}

func (l *List) Remove(ctx context.Context, productID string) error {
	idx := l.indexOf(productID)
	if idx < 0 {
		return domain.ErrNotFound
	}
	next := make([]domain.WishlistItem, 0, len(l.items)-1)
	next = append(next, l.items[:idx]...)
	next = append(next, l.items[idx+1:]...)
	return l.commit(ctx, next)
}

func (l *List) indexOf(productID string) int {
	for i, it := range l.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *List) commit(ctx context.Context, next []domain.WishlistItem) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}
	if err := l.storage.Put(ctx, l.key, raw); err != nil {
		return fmt.Errorf("save wishlist %s: %w", l.key, err)
	}
	l.items = next
	return nil
}
