package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"xoned-commerce/internal/domain"
	productrepo "xoned-commerce/internal/repository/product"
)

type Service struct {
	repo     productrepo.Repository
	capsules capsuleLookup
}

type capsuleLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Capsule, error)
}

func New(repo productrepo.Repository, capsules capsuleLookup) *Service {
	return &Service{repo: repo, capsules: capsules}
}

// Input is the editable part of a product.
type Input struct {
	Key         string               `json:"key"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       int64                `json:"price"`
	CapsuleID   string               `json:"capsuleId"`
	Category    string               `json:"category"`
	Images      []string             `json:"images"`
	Sizes       []string             `json:"sizes"`
	Colors      []string             `json:"colors"`
	Tags        []string             `json:"tags"`
	Stock       int                  `json:"stock"`
	Status      domain.ProductStatus `json:"status"`
	IsFeatured  bool                 `json:"isFeatured"`
	IsNew       bool                 `json:"isNew"`
}

// AdminFilter narrows the back-office product list. Empty fields match all.
type AdminFilter struct {
	Search    string
	CapsuleID string
	Status    domain.ProductStatus
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortName      Sort = "name"
)

// AllCategories disables the category filter.
const AllCategories = "ALL"

// Query is a storefront search. MaxPrice of zero means unbounded.
type Query struct {
	Text        string
	Category    string
	MinPrice    int64
	MaxPrice    int64
	InStockOnly bool
	NewOnly     bool
	Sort        Sort
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive hides products that are not published on the storefront.
func (s *Service) GetActive(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.ProductStatusDraft {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) AdminList(ctx context.Context, f AdminFilter) ([]domain.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.CapsuleName), search) {
			continue
		}
		if f.CapsuleID != "" && p.CapsuleID != f.CapsuleID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Search lists storefront-visible products matching q.
func (s *Service) Search(ctx context.Context, q Query) ([]domain.Product, error) {
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	switch q.Sort {
	case SortNewest, SortPriceLow, SortPriceHigh, SortName:
	default:
		return nil, domain.NewValidationError("sort", fmt.Sprintf("unknown sort %q", q.Sort))
	}
	if q.MinPrice < 0 || (q.MaxPrice > 0 && q.MaxPrice < q.MinPrice) {
		return nil, domain.NewValidationError("price", "invalid price range")
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Status == domain.ProductStatusDraft {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(p.Name), text) && !strings.Contains(strings.ToLower(p.Category), text) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(q.Category, AllCategories) && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if p.Price < q.MinPrice || (q.MaxPrice > 0 && p.Price > q.MaxPrice) {
			continue
		}
		if q.InStockOnly && !p.InStock() {
			continue
		}
		if q.NewOnly && !p.IsNew {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, q.Sort)
	return out, nil
}

// Featured lists active products flagged for the home page.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range all {
		if p.IsFeatured && p.Status == domain.ProductStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct categories of storefront products, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range all {
		if p.Status == domain.ProductStatusDraft || p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if p.Key == "" {
		p.Key = newKey(p.Name)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	p, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

// Upsert saves the product under its key, used by bulk import.
func (s *Service) Upsert(ctx context.Context, in Input) (*domain.Product, error) {
	if strings.TrimSpace(in.Key) == "" {
		return nil, domain.NewValidationError("key", "product key is required")
	}
	p, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) SetFeatured(ctx context.Context, id string, featured bool) error {
	return s.repo.SetFeatured(ctx, id, featured)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) validate(ctx context.Context, in Input) (domain.Product, error) {
	p := domain.Product{
		Key:         strings.TrimSpace(in.Key),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		CapsuleID:   strings.TrimSpace(in.CapsuleID),
		Category:    strings.ToUpper(strings.TrimSpace(in.Category)),
		Images:      compact(in.Images),
		Sizes:       compact(in.Sizes),
		Colors:      compact(in.Colors),
		Tags:        compact(in.Tags),
		Stock:       in.Stock,
		Status:      in.Status,
		IsFeatured:  in.IsFeatured,
		IsNew:       in.IsNew,
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusDraft
	}

	switch {
	case p.Name == "":
		return p, domain.NewValidationError("name", "product name is required")
	case p.Price <= 0:
		return p, domain.NewValidationError("price", "price must be greater than zero")
	case p.Stock < 0:
		return p, domain.NewValidationError("stock", "stock must not be negative")
	case p.CapsuleID == "":
		return p, domain.NewValidationError("capsuleId", "capsule is required")
	case len(p.Images) == 0:
		return p, domain.NewValidationError("images", "at least one image is required")
	case !p.Status.Valid():
		return p, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", p.Status))
	}

	if _, err := s.capsules.GetByID(ctx, p.CapsuleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return p, domain.NewValidationError("capsuleId", "capsule does not exist")
		}
		return p, err
	}
	return p, nil
}

// sortProducts orders in place. Newest puts new arrivals first, keeping the
// repository's created_at ordering within each group.
func sortProducts(products []domain.Product, by Sort) {
	switch by {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortName:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].IsNew != products[j].IsNew {
				return products[i].IsNew
			}
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

func compact(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func newKey(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	suffix := uuid.NewString()[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
