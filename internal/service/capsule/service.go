package capsule

import (
	"context"
	"strings"

	"xoned-commerce/internal/domain"
	capsulerepo "xoned-commerce/internal/repository/capsule"
)

const copySuffix = " (Copy)"

type Service struct {
	repo capsulerepo.Repository
}

func New(repo capsulerepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewValidationError("name", "capsule name is required")
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.Capsule, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Capsule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Capsule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Capsule{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CoverImage:  strings.TrimSpace(in.CoverImage),
	})
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Capsule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, domain.Capsule{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CoverImage:  strings.TrimSpace(in.CoverImage),
	})
}

// Delete removes the capsule only. Its products keep pointing at the old id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Duplicate copies the capsule's own fields; products are not copied.
func (s *Service) Duplicate(ctx context.Context, id string) (*domain.Capsule, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Capsule{
		Name:        src.Name + copySuffix,
		Description: src.Description,
		CoverImage:  src.CoverImage,
	})
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
