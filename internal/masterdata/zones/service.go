package zones

import (
	"context"
	"fmt"
	"strings"

	"github.com/geepos/geepos/internal/masterdata/shared"
)

// Service wraps zone business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Zone, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Zone, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, z Zone) (Zone, error) {
	if strings.TrimSpace(z.Name) == "" {
		return Zone{}, fmt.Errorf("%w: zone name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, z)
}

func (s *Service) Update(ctx context.Context, id int64, z Zone) error {
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("%w: zone name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, z)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
