package imports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geepos/geepos/internal/orders"
	"github.com/geepos/geepos/internal/shared"
)

// RepositoryPort describes import persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, imp Import) (int64, error)
	UpdateStatus(ctx context.Context, impID int64, status Status) error
	MarkLineApplied(ctx context.Context, impID, proID int64) error
	List(ctx context.Context) ([]Import, error)
	Get(ctx context.Context, impID int64) (Import, error)
}

// OrdersPort exposes the purchase-order operations the workflow needs. The
// delete bypasses the already-imported guard, since consuming the order is
// part of this very workflow.
type OrdersPort interface {
	Get(ctx context.Context, orderID int64) (orders.Order, error)
	Delete(ctx context.Context, orderID int64) error
}

// StockPort applies one atomic increment and returns the new quantity.
type StockPort interface {
	AdjustStock(ctx context.Context, proID int64, delta int64) (int64, error)
}

// AuditPort records workflow actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SummaryCache invalidates cached dashboard counters after stock moved.
type SummaryCache interface {
	Bump(ctx context.Context) error
}

// Service runs the order→import→stock workflow.
type Service struct {
	repo    RepositoryPort
	orders  OrdersPort
	stock   StockPort
	audit   AuditPort
	summary SummaryCache
	logger  *slog.Logger
}

// NewService constructs Service. summary may be nil.
func NewService(repo RepositoryPort, ordersPort OrdersPort, stock StockPort, audit AuditPort, summary SummaryCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, orders: ordersPort, stock: stock, audit: audit, summary: summary, logger: logger}
}

// ImportInput describes an import request for one pending order.
type ImportInput struct {
	OrderID    int64
	EmpID      int64
	CostPrices map[int64]float64
}

// ImportOrder receives a pending purchase order into stock. Each line is one
// atomic increment; the aggregate outcome is reported as full, partial or no
// success. The source order is consumed only when every line applied; a
// partially applied import keeps the order so the remainder is not lost.
func (s *Service) ImportOrder(ctx context.Context, input ImportInput) (Result, error) {
	order, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return Result{}, err
	}
	if order.Imported {
		return Result{}, ErrOrderImported
	}
	if len(order.Lines) == 0 {
		return Result{}, ErrNoLines
	}

	imp := Import{
		OrderID: order.OrderID,
		EmpID:   input.EmpID,
		ImpDate: time.Now().UTC(),
		Status:  StatusFailed,
	}
	for _, line := range order.Lines {
		cost, ok := input.CostPrices[line.ProID]
		if !ok || cost < 0 {
			return Result{}, fmt.Errorf("%w: cost price missing for product %d", ErrValidation, line.ProID)
		}
		imp.TotalPrice += cost * float64(line.Qty)
		imp.Lines = append(imp.Lines, Line{ProID: line.ProID, Qty: line.Qty, CostPrice: cost})
	}

	impID, err := s.repo.Create(ctx, imp)
	if err != nil {
		return Result{}, err
	}
	imp.ImpID = impID

	applied := 0
	for i, line := range imp.Lines {
		if _, err := s.stock.AdjustStock(ctx, line.ProID, line.Qty); err != nil {
			if s.logger != nil {
				s.logger.Warn("stock increment failed",
					slog.Int64("imp_id", impID),
					slog.Int64("proid", line.ProID),
					slog.Any("error", err))
			}
			continue
		}
		imp.Lines[i].Applied = true
		applied++
		if err := s.repo.MarkLineApplied(ctx, impID, line.ProID); err != nil && s.logger != nil {
			s.logger.Warn("mark line applied", slog.Int64("imp_id", impID), slog.Any("error", err))
		}
	}

	total := len(imp.Lines)
	result := Result{Import: imp, Total: total, Applied: applied}
	switch {
	case applied == total:
		imp.Status = StatusCompleted
		result.Message = fmt.Sprintf("all %d items received into stock", total)
		if err := s.orders.Delete(ctx, order.OrderID); err != nil {
			if s.logger != nil {
				s.logger.Warn("delete source order", slog.Int64("order_id", order.OrderID), slog.Any("error", err))
			}
		} else {
			result.OrderDeleted = true
		}
	case applied == 0:
		imp.Status = StatusFailed
		result.Message = "no items could be received, order kept"
	default:
		imp.Status = StatusPartial
		result.Message = fmt.Sprintf("%d of %d items received, order kept for the remainder", applied, total)
	}
	result.Import.Status = imp.Status
	if err := s.repo.UpdateStatus(ctx, impID, imp.Status); err != nil && s.logger != nil {
		s.logger.Warn("update import status", slog.Int64("imp_id", impID), slog.Any("error", err))
	}

	s.recordAudit(ctx, input.EmpID, impID, map[string]any{
		"order_id": order.OrderID,
		"applied":  applied,
		"total":    total,
		"status":   string(imp.Status),
	})
	if applied > 0 && s.summary != nil {
		if err := s.summary.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("dashboard invalidate", slog.Any("error", err))
		}
	}
	return result, nil
}

// List returns import headers.
func (s *Service) List(ctx context.Context) ([]Import, error) {
	return s.repo.List(ctx)
}

// Get fetches one import with lines.
func (s *Service) Get(ctx context.Context, impID int64) (Import, error) {
	return s.repo.Get(ctx, impID)
}

func (s *Service) recordAudit(ctx context.Context, actorID, impID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "IMPORT_POST",
		Entity:   "import",
		EntityID: fmt.Sprintf("%d", impID),
		Meta:     meta,
	})
}
