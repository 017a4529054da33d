package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/geepos/geepos/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, pendingOnly bool) ([]Order, error)
	Get(ctx context.Context, orderID int64) (Order, error)
	Delete(ctx context.Context, orderID int64) error
}

// AuditPort records workflow actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SummaryCache invalidates cached dashboard counters.
type SummaryCache interface {
	Bump(ctx context.Context) error
}

// Service orchestrates the purchase-order workflow.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	summary SummaryCache
}

// NewService constructs Service. summary may be nil.
func NewService(repo RepositoryPort, audit AuditPort, summary SummaryCache) *Service {
	return &Service{repo: repo, audit: audit, summary: summary}
}

// CreateInput describes an order creation payload.
type CreateInput struct {
	SupID     int64
	EmpID     int64
	OrderDate time.Time
	Note      string
	Lines     []LineInput
}

// LineInput is one requested product.
type LineInput struct {
	ProID int64
	Qty   int64
}

// Create validates and persists a purchase order. A supplier and at least
// one line are mandatory.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if input.SupID == 0 {
		return Order{}, fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	if len(input.Lines) == 0 {
		return Order{}, fmt.Errorf("%w: at least one line is required", ErrValidation)
	}
	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}
	order := Order{
		OrderNo:   generateNumber("ORD"),
		SupID:     input.SupID,
		EmpID:     input.EmpID,
		OrderDate: orderDate,
		Note:      input.Note,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		orderID, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}
		for _, line := range input.Lines {
			if line.ProID == 0 || line.Qty <= 0 {
				return fmt.Errorf("%w: every line needs a product and positive quantity", ErrValidation)
			}
			if err := tx.InsertLine(ctx, Line{OrderID: orderID, ProID: line.ProID, Qty: line.Qty}); err != nil {
				return err
			}
		}
		order.OrderID = orderID
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, input.EmpID, "ORDER_CREATE", order.OrderID, map[string]any{"order_no": order.OrderNo, "lines": len(input.Lines)})
	s.bumpSummary(ctx)
	return order, nil
}

// List returns all orders, or only those not yet imported.
func (s *Service) List(ctx context.Context, pendingOnly bool) ([]Order, error) {
	return s.repo.List(ctx, pendingOnly)
}

// Get fetches one order with lines.
func (s *Service) Get(ctx context.Context, orderID int64) (Order, error) {
	return s.repo.Get(ctx, orderID)
}

// Delete removes an order that has not been imported yet.
func (s *Service) Delete(ctx context.Context, orderID int64, actorID int64) error {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Imported {
		return ErrAlreadyImported
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "ORDER_DELETE", orderID, map[string]any{"order_no": order.OrderNo})
	s.bumpSummary(ctx)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "purchase_order",
		EntityID: fmt.Sprintf("%d", orderID),
		Meta:     meta,
	})
}

func (s *Service) bumpSummary(ctx context.Context) {
	if s.summary == nil {
		return
	}
	_ = s.summary.Bump(ctx)
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
