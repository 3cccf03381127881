package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/shared"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Service coordinates product master data operations.
type Service struct {
	repo        Repository
	invalidator *shared.Invalidator
}

// NewService builds Service. The invalidator may be nil.
func NewService(repo Repository, invalidator *shared.Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// GetBySlug returns a product by its public slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List returns products, optionally only active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.List(ctx, activeOnly)
}

// Create adds a new product, deriving the slug from the name when blank.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	p, err := s.repo.Create(ctx, Product{
		Name:       strings.TrimSpace(req.Name),
		Slug:       slug,
		ShortDesc:  req.ShortDesc,
		LongDesc:   req.LongDesc,
		IsFeatured: req.IsFeatured,
	})
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewCatalog)
	return p, nil
}

// Update applies partial edits to a product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.ShortDesc != nil {
		updates["short_desc"] = *req.ShortDesc
	}
	if req.LongDesc != nil {
		updates["long_desc"] = *req.LongDesc
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.invalidator.Invalidate(ctx, shared.ViewCatalog)
	}
	return s.repo.Get(ctx, id)
}

// SetActive toggles public visibility. Deactivation is the supported
// alternative to deleting a referenced product.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Product, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewCatalog)
	return s.repo.Get(ctx, id)
}

// Delete removes a product outright. Products referenced by open orders
// cannot be deleted and must be deactivated instead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	inUse, err := s.repo.HasOpenOrderReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("check order references: %w", err)
	}
	if inUse {
		return ErrProductInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, shared.ViewCatalog)
	return nil
}

// Slugify lowercases a name and collapses non-alphanumerics into hyphens.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
