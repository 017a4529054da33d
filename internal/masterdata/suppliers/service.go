package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/geepos/geepos/internal/masterdata/shared"
)

// Service wraps supplier business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	if strings.TrimSpace(sup.Name) == "" {
		return Supplier{}, fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, sup)
}

func (s *Service) Update(ctx context.Context, id int64, sup Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, sup)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
