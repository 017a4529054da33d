package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/geepos/geepos/internal/exports"
	"github.com/geepos/geepos/internal/orders"
	"github.com/geepos/geepos/internal/sales"
)

// ProductsPort exposes the catalog counters the summary needs.
type ProductsPort interface {
	Count(ctx context.Context) (int, error)
	CountLowStock(ctx context.Context) (int, error)
}

// SalesPort aggregates today's revenue.
type SalesPort interface {
	TodaySummary(ctx context.Context) (sales.DaySummary, error)
}

// OrdersPort lists purchase orders.
type OrdersPort interface {
	List(ctx context.Context, pendingOnly bool) ([]orders.Order, error)
}

// ExportsPort lists export requests.
type ExportsPort interface {
	List(ctx context.Context) ([]exports.Export, error)
}

// Summary is the landing-page snapshot.
type Summary struct {
	ProductCount   int              `json:"product_count"`
	LowStockCount  int              `json:"low_stock_count"`
	PendingOrders  int              `json:"pending_orders"`
	PendingExports int              `json:"pending_exports"`
	TodaySales     sales.DaySummary `json:"today_sales"`
}

// Service assembles the dashboard summary from the domain stores.
type Service struct {
	products ProductsPort
	sales    SalesPort
	orders   OrdersPort
	exports  ExportsPort
	cache    *Cache
}

// NewService constructs Service. cache may be nil; summaries are then
// computed on every request.
func NewService(productsPort ProductsPort, salesPort SalesPort, ordersPort OrdersPort, exportsPort ExportsPort, cache *Cache) *Service {
	return &Service{
		products: productsPort,
		sales:    salesPort,
		orders:   ordersPort,
		exports:  exportsPort,
		cache:    cache,
	}
}

// Summary returns the cached snapshot, computing it when stale. The five
// counters are independent reads, so they fan out concurrently.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "summary")
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx)
	})
	return summary, err
}

// Invalidate bumps the cache version after a stock movement.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) compute(ctx context.Context) (Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.products.Count(ctx)
		summary.ProductCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.products.CountLowStock(ctx)
		summary.LowStockCount = n
		return err
	})
	g.Go(func() error {
		day, err := s.sales.TodaySummary(ctx)
		summary.TodaySales = day
		return err
	})
	g.Go(func() error {
		pending, err := s.orders.List(ctx, true)
		summary.PendingOrders = len(pending)
		return err
	})
	g.Go(func() error {
		items, err := s.exports.List(ctx)
		if err != nil {
			return err
		}
		for _, exp := range items {
			if exp.Status == exports.StatusPending {
				summary.PendingExports++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
