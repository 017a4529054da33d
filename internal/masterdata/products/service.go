package products

import (
	"context"
	"fmt"

	"github.com/geepos/geepos/internal/masterdata/shared"
)

// Service wraps product catalog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of products plus the total match count.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	return s.repo.List(ctx, filters)
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a product.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(p); err != nil {
		return Product{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.Create(ctx, p)
}

// Update validates and stores changed fields. Stock quantity is deliberately
// not updatable here; it only moves through import/export/sale workflows.
func (s *Service) Update(ctx context.Context, id int64, p Product) error {
	if err := s.validate(p); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, p)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
