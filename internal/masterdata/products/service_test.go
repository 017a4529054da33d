package products_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/masterdata/shared"
	_ "github.com/geepos/geepos/testing"
)

type stubRepo struct {
	stored  map[int64]products.Product
	nextID  int64
	filters shared.ListFilters
}

func newStubRepo() *stubRepo {
	return &stubRepo{stored: map[int64]products.Product{}}
}

func (s *stubRepo) List(ctx context.Context, filters shared.ListFilters) ([]products.Product, int, error) {
	s.filters = filters
	items := []products.Product{}
	for _, p := range s.stored {
		items = append(items, p)
	}
	return items, len(items), nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (products.Product, error) {
	p, ok := s.stored[id]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) Create(ctx context.Context, product products.Product) (products.Product, error) {
	s.nextID++
	product.ProID = s.nextID
	s.stored[product.ProID] = product
	return product, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, product products.Product) error {
	if _, ok := s.stored[id]; !ok {
		return shared.ErrNotFound
	}
	product.ProID = id
	s.stored[id] = product
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.stored[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.stored, id)
	return nil
}

func (s *stubRepo) AdjustStock(ctx context.Context, id int64, delta int64) (int64, error) {
	p, ok := s.stored[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	if p.Qty+delta < 0 {
		return 0, products.ErrInsufficientStock
	}
	p.Qty += delta
	s.stored[id] = p
	return p.Qty, nil
}

func (s *stubRepo) CountLowStock(ctx context.Context) (int, error) {
	n := 0
	for _, p := range s.stored {
		if p.Qty < p.QtyMin {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) Count(ctx context.Context) (int, error) { return len(s.stored), nil }

func valid() products.Product {
	return products.Product{
		Name:      "Jasmine Rice 5kg",
		Category:  "Grocery",
		Brand:     "Royal Umbrella",
		Qty:       20,
		QtyMin:    5,
		CostPrice: 180,
		SalePrice: 215.50,
		ZoneID:    1,
	}
}

func TestCreateValid(t *testing.T) {
	repo := newStubRepo()
	svc := products.NewService(repo)

	created, err := svc.Create(context.Background(), valid())
	require.NoError(t, err)
	assert.NotZero(t, created.ProID)
	assert.Contains(t, repo.stored, created.ProID)
}

func TestCreateValidation(t *testing.T) {
	svc := products.NewService(newStubRepo())

	cases := []struct {
		name   string
		mutate func(*products.Product)
	}{
		{"empty name", func(p *products.Product) { p.Name = "  " }},
		{"negative qty", func(p *products.Product) { p.Qty = -1 }},
		{"negative qty_min", func(p *products.Product) { p.QtyMin = -1 }},
		{"negative cost price", func(p *products.Product) { p.CostPrice = -0.5 }},
		{"negative sale price", func(p *products.Product) { p.SalePrice = -10 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.mutate(&p)
			_, err := svc.Create(context.Background(), p)
			assert.True(t, errors.Is(err, shared.ErrValidation), "got %v", err)
		})
	}
}

func TestUpdateValidation(t *testing.T) {
	repo := newStubRepo()
	svc := products.NewService(repo)
	created, err := svc.Create(context.Background(), valid())
	require.NoError(t, err)

	bad := valid()
	bad.Name = ""
	err = svc.Update(context.Background(), created.ProID, bad)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	good := valid()
	good.SalePrice = 229
	require.NoError(t, svc.Update(context.Background(), created.ProID, good))
	assert.Equal(t, 229.0, repo.stored[created.ProID].SalePrice)
}

func TestListDefaultsPaging(t *testing.T) {
	repo := newStubRepo()
	svc := products.NewService(repo)

	_, _, err := svc.List(context.Background(), shared.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.filters.Limit)
	assert.Equal(t, 1, repo.filters.Page)
}
