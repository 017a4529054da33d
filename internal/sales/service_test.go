package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/sales"
	"github.com/geepos/geepos/internal/shared"
	_ "github.com/geepos/geepos/testing"
)

type fakeRepo struct {
	stored map[int64]sales.Sale
	nextID int64
	err    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: map[int64]sales.Sale{}}
}

func (f *fakeRepo) Create(ctx context.Context, sale sales.Sale) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	sale.SaleID = f.nextID
	f.stored[sale.SaleID] = sale
	return sale.SaleID, nil
}

func (f *fakeRepo) List(ctx context.Context, from, to time.Time) ([]sales.Sale, error) {
	items := []sales.Sale{}
	for _, s := range f.stored {
		if !from.IsZero() && s.SaleDate.Before(from) {
			continue
		}
		if !to.IsZero() && !s.SaleDate.Before(to) {
			continue
		}
		items = append(items, s)
	}
	return items, nil
}

func (f *fakeRepo) Get(ctx context.Context, saleID int64) (sales.Sale, error) {
	s, ok := f.stored[saleID]
	if !ok {
		return sales.Sale{}, sales.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) SummaryForDay(ctx context.Context, day time.Time) (sales.DaySummary, error) {
	summary := sales.DaySummary{Day: day}
	for _, s := range f.stored {
		summary.Count++
		summary.Total += s.Total
	}
	return summary, nil
}

type fakeProducts struct {
	catalog map[int64]products.Product
}

func (f *fakeProducts) Get(ctx context.Context, proID int64) (products.Product, error) {
	p, ok := f.catalog[proID]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return p, nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, log shared.AuditLog) error { return nil }

func catalog() *fakeProducts {
	return &fakeProducts{catalog: map[int64]products.Product{
		10: {ProID: 10, Name: "Jasmine Rice 5kg", Qty: 100, SalePrice: 215.50},
		11: {ProID: 11, Name: "Fish Sauce 700ml", Qty: 40, SalePrice: 32.00},
	}}
}

func TestCreatePricesFromCatalog(t *testing.T) {
	repo := newFakeRepo()
	svc := sales.NewService(repo, catalog(), nopAudit{}, nil)

	sale, err := svc.Create(context.Background(), sales.CreateInput{
		EmpID: 7,
		Lines: []sales.LineInput{{ProID: 10, Qty: 2}, {ProID: 11, Qty: 3}},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2*215.50+3*32.00, sale.Total, 1e-9)
	require.Len(t, sale.Lines, 2)
	assert.Equal(t, 215.50, sale.Lines[0].SalePrice)
	assert.InDelta(t, 431.00, sale.Lines[0].LineTotal, 1e-9)
	assert.Equal(t, "527.00", sale.TotalDisplay)
	assert.Contains(t, repo.stored, sale.SaleID)
}

func TestCreateValidation(t *testing.T) {
	svc := sales.NewService(newFakeRepo(), catalog(), nopAudit{}, nil)

	cases := []struct {
		name  string
		lines []sales.LineInput
	}{
		{"no lines", nil},
		{"zero qty", []sales.LineInput{{ProID: 10, Qty: 0}}},
		{"negative qty", []sales.LineInput{{ProID: 10, Qty: -1}}},
		{"unknown product", []sales.LineInput{{ProID: 999, Qty: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), sales.CreateInput{EmpID: 7, Lines: tc.lines})
			assert.True(t, errors.Is(err, sales.ErrValidation), "got %v", err)
		})
	}
}

func TestCreatePropagatesStockError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = sales.ErrInsufficientStock
	svc := sales.NewService(repo, catalog(), nopAudit{}, nil)

	_, err := svc.Create(context.Background(), sales.CreateInput{
		EmpID: 7,
		Lines: []sales.LineInput{{ProID: 11, Qty: 50}},
	})
	assert.True(t, errors.Is(err, sales.ErrInsufficientStock))
	assert.Empty(t, repo.stored)
}

func TestListFormatstotals(t *testing.T) {
	repo := newFakeRepo()
	repo.stored[1] = sales.Sale{SaleID: 1, Total: 12345.6, SaleDate: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)}
	svc := sales.NewService(repo, catalog(), nopAudit{}, nil)

	items, err := svc.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "12,345.60", items[0].TotalDisplay)
}

func TestListHalfOpenRange(t *testing.T) {
	repo := newFakeRepo()
	repo.stored[1] = sales.Sale{SaleID: 1, SaleDate: time.Date(2026, 8, 15, 23, 0, 0, 0, time.UTC)}
	repo.stored[2] = sales.Sale{SaleID: 2, SaleDate: time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)}
	svc := sales.NewService(repo, catalog(), nopAudit{}, nil)

	from := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	items, err := svc.List(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].SaleID)
}
