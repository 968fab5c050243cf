package seed

import (
	"context"
	"fmt"
	"strings"

	"xoned-commerce/internal/domain"
	capsulesvc "xoned-commerce/internal/service/capsule"
	productsvc "xoned-commerce/internal/service/product"
)

type CapsuleStore interface {
	List(ctx context.Context) ([]domain.Capsule, error)
	Create(ctx context.Context, in capsulesvc.Input) (*domain.Capsule, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, in productsvc.Input) (*domain.Product, error)
}

type capsuleSeed struct {
	Name        string
	Description string
	CoverImage  string
}

type productSeed struct {
	Key      string
	Name     string
	Capsule  string
	Category string
	Price    int64
	Stock    int
	Sizes    []string
	Colors   []string
	Featured bool
	New      bool
}

var capsules = []capsuleSeed{
	{Name: "VOID", Description: "Monochrome essentials", CoverImage: "/images/capsules/void.jpg"},
	{Name: "ECLIPSE", Description: "Outerwear and layering", CoverImage: "/images/capsules/eclipse.jpg"},
}

var products = []productSeed{
	{Key: "phantom-tee", Name: "PHANTOM TEE", Capsule: "VOID", Category: "TEES", Price: 2499, Stock: 40, Sizes: []string{"S", "M", "L", "XL"}, Colors: []string{"Black", "Bone"}, Featured: true, New: true},
	{Key: "shadow-cargo", Name: "SHADOW CARGO", Capsule: "VOID", Category: "BOTTOMS", Price: 5999, Stock: 18, Sizes: []string{"30", "32", "34"}, Colors: []string{"Black"}},
	{Key: "onyx-jacket", Name: "ONYX JACKET", Capsule: "ECLIPSE", Category: "OUTERWEAR", Price: 12999, Stock: 6, Sizes: []string{"M", "L"}, Colors: []string{"Black"}, Featured: true},
	{Key: "noir-boots", Name: "NOIR BOOTS", Capsule: "ECLIPSE", Category: "FOOTWEAR", Price: 9999, Stock: 0, Sizes: []string{"8", "9", "10"}, New: true},
}

// Apply inserts demo capsules and products for manual testing. Capsules are
// matched by name and products upserted by key, so it is safe to rerun.
func Apply(ctx context.Context, capsuleStore CapsuleStore, productStore ProductWriter) error {
	ids, err := ensureCapsules(ctx, capsuleStore)
	if err != nil {
		return fmt.Errorf("ensure capsules: %w", err)
	}

	for _, p := range products {
		in := productsvc.Input{
			Key:        p.Key,
			Name:       p.Name,
			Price:      p.Price,
			CapsuleID:  ids[p.Capsule],
			Category:   p.Category,
			Images:     []string{"/images/products/" + p.Key + ".jpg"},
			Sizes:      p.Sizes,
			Colors:     p.Colors,
			Stock:      p.Stock,
			Status:     domain.ProductStatusActive,
			IsFeatured: p.Featured,
			IsNew:      p.New,
		}
		if p.Stock == 0 {
			in.Status = domain.ProductStatusOutOfStock
		}
		if _, err := productStore.Upsert(ctx, in); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	return nil
}

func ensureCapsules(ctx context.Context, store CapsuleStore) (map[string]string, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(capsules))
	for _, c := range existing {
		ids[strings.ToUpper(c.Name)] = c.ID
	}
	for _, c := range capsules {
		if _, ok := ids[c.Name]; ok {
			continue
		}
		created, err := store.Create(ctx, capsulesvc.Input{Name: c.Name, Description: c.Description, CoverImage: c.CoverImage})
		if err != nil {
			return nil, fmt.Errorf("create capsule %s: %w", c.Name, err)
		}
		ids[c.Name] = created.ID
	}
	return ids, nil
}
