package sales

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/shared"
)

// RepositoryPort is the store for sales.
type RepositoryPort interface {
	Create(ctx context.Context, sale Sale) (int64, error)
	List(ctx context.Context, from, to time.Time) ([]Sale, error)
	Get(ctx context.Context, saleID int64) (Sale, error)
	SummaryForDay(ctx context.Context, day time.Time) (DaySummary, error)
}

// ProductsPort looks up catalog items for pricing.
type ProductsPort interface {
	Get(ctx context.Context, proID int64) (products.Product, error)
}

// AuditPort records sale actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SummaryCache invalidates cached dashboard counters after stock moved.
type SummaryCache interface {
	Bump(ctx context.Context) error
}

// Service records sales against the catalog.
type Service struct {
	repo     RepositoryPort
	products ProductsPort
	audit    AuditPort
	summary  SummaryCache
	printer  *message.Printer
}

// NewService constructs Service. summary may be nil.
func NewService(repo RepositoryPort, productsPort ProductsPort, audit AuditPort, summary SummaryCache) *Service {
	return &Service{
		repo:     repo,
		products: productsPort,
		audit:    audit,
		summary:  summary,
		printer:  message.NewPrinter(language.English),
	}
}

// LineInput is one item being sold.
type LineInput struct {
	ProID int64 `json:"proid" validate:"required,gt=0"`
	Qty   int64 `json:"qty" validate:"required,gt=0"`
}

// CreateInput describes a new sale.
type CreateInput struct {
	EmpID    int64
	SaleDate time.Time
	Lines    []LineInput
}

// Create prices each line from the catalog, stores the sale and decrements
// stock in one transaction. Prices are never taken from the request.
func (s *Service) Create(ctx context.Context, input CreateInput) (Sale, error) {
	if len(input.Lines) == 0 {
		return Sale{}, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	sale := Sale{
		EmpID:    input.EmpID,
		SaleDate: input.SaleDate,
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return Sale{}, fmt.Errorf("%w: quantity must be positive for product %d", ErrValidation, line.ProID)
		}
		product, err := s.products.Get(ctx, line.ProID)
		if err != nil {
			return Sale{}, fmt.Errorf("%w: product %d not found", ErrValidation, line.ProID)
		}
		lineTotal := product.SalePrice * float64(line.Qty)
		sale.Total += lineTotal
		sale.Lines = append(sale.Lines, Line{
			ProID:     line.ProID,
			Qty:       line.Qty,
			SalePrice: product.SalePrice,
			LineTotal: lineTotal,
		})
	}

	saleID, err := s.repo.Create(ctx, sale)
	if err != nil {
		return Sale{}, err
	}
	sale.SaleID = saleID
	sale.TotalDisplay = s.FormatAmount(sale.Total)

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.EmpID,
			Action:   "SALE_POST",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", saleID),
			Meta:     map[string]any{"items": len(sale.Lines), "total": sale.Total},
		})
	}
	if s.summary != nil {
		_ = s.summary.Bump(ctx)
	}
	return sale, nil
}

// List returns sales in the half-open range [from, to). Zero bounds are
// open.
func (s *Service) List(ctx context.Context, from, to time.Time) ([]Sale, error) {
	items, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].TotalDisplay = s.FormatAmount(items[i].Total)
	}
	return items, nil
}

// Get fetches one sale with lines.
func (s *Service) Get(ctx context.Context, saleID int64) (Sale, error) {
	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return Sale{}, err
	}
	sale.TotalDisplay = s.FormatAmount(sale.Total)
	return sale, nil
}

// TodaySummary aggregates today's sales for the dashboard.
func (s *Service) TodaySummary(ctx context.Context) (DaySummary, error) {
	return s.repo.SummaryForDay(ctx, time.Now().UTC())
}

// FormatAmount renders an amount with thousands separators for display.
func (s *Service) FormatAmount(amount float64) string {
	return s.printer.Sprintf("%.2f", amount)
}
