package exports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/masterdata/zones"
	"github.com/geepos/geepos/internal/shared"
)

// RepositoryPort is the primary store for export requests.
type RepositoryPort interface {
	Create(ctx context.Context, exp Export) (int64, error)
	List(ctx context.Context) ([]Export, error)
	Get(ctx context.Context, exportID int64) (Export, error)
	UpdateStatus(ctx context.Context, exportID int64, from, to Status) error
	Delete(ctx context.Context, exportID int64) error
}

// ProductsPort looks up catalog items for request validation.
type ProductsPort interface {
	Get(ctx context.Context, proID int64) (products.Product, error)
}

// StockPort applies one atomic increment and returns the new quantity.
type StockPort interface {
	AdjustStock(ctx context.Context, proID int64, delta int64) (int64, error)
}

// JournalPort is the Redis fallback queue for requests the primary store
// could not take.
type JournalPort interface {
	Push(ctx context.Context, exp Export) (JournalEntry, error)
	Pop(ctx context.Context) (JournalEntry, bool, error)
	Requeue(ctx context.Context, entry JournalEntry) error
	DeadLetter(ctx context.Context, entry JournalEntry) error
	Len(ctx context.Context) (int64, error)
}

// AuditPort records workflow actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SummaryCache invalidates cached dashboard counters after stock moved.
type SummaryCache interface {
	Bump(ctx context.Context) error
}

// ZonesPort resolves storage zones referenced by export lines.
type ZonesPort interface {
	Get(ctx context.Context, id int64) (zones.Zone, error)
}

// Service runs the export request → approval → stock workflow.
type Service struct {
	repo     RepositoryPort
	products ProductsPort
	stock    StockPort
	zones    ZonesPort
	journal  JournalPort
	audit    AuditPort
	summary  SummaryCache
	logger   *slog.Logger
}

// NewService constructs Service. summary may be nil.
func NewService(repo RepositoryPort, productsPort ProductsPort, stock StockPort, zonesPort ZonesPort, journal JournalPort, audit AuditPort, summary SummaryCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, products: productsPort, stock: stock, zones: zonesPort, journal: journal, audit: audit, summary: summary, logger: logger}
}

// LineInput is one requested movement out of stock.
type LineInput struct {
	ProID  int64  `json:"proid" validate:"required,gt=0"`
	Qty    int64  `json:"qty" validate:"required,gt=0"`
	ZoneID int64  `json:"zone_id" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required"`
}

// CreateInput describes a new export request.
type CreateInput struct {
	EmpID      int64
	ExportDate time.Time
	Lines      []LineInput
}

// CreateResult reports where the request landed. Queued means the primary
// store was down and the request sits in the fallback journal under
// JournalRef until the reconciler replays it.
type CreateResult struct {
	Export  Export `json:"export"`
	Queued  bool   `json:"queued"`
	Message string `json:"message,omitempty"`
}

// Create validates and stores a new export request as pending approval.
// Stock is not touched here; only approval moves quantities. When the
// primary store fails, the request goes to the fallback journal instead of
// being dropped, and the caller is told so explicitly.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	if len(input.Lines) == 0 {
		return CreateResult{}, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	exp := Export{
		EmpID:      input.EmpID,
		ExportDate: input.ExportDate,
		Status:     StatusPending,
	}
	if exp.ExportDate.IsZero() {
		exp.ExportDate = time.Now().UTC()
	}
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return CreateResult{}, fmt.Errorf("%w: quantity must be positive for product %d", ErrValidation, line.ProID)
		}
		if line.Reason == "" {
			return CreateResult{}, fmt.Errorf("%w: reason is required for product %d", ErrValidation, line.ProID)
		}
		if line.ZoneID <= 0 {
			return CreateResult{}, fmt.Errorf("%w: zone is required for product %d", ErrValidation, line.ProID)
		}
		if _, err := s.zones.Get(ctx, line.ZoneID); err != nil {
			return CreateResult{}, fmt.Errorf("%w: zone %d not found", ErrValidation, line.ZoneID)
		}
		product, err := s.products.Get(ctx, line.ProID)
		if err != nil {
			return CreateResult{}, fmt.Errorf("%w: product %d not found", ErrValidation, line.ProID)
		}
		if line.Qty > product.Qty {
			return CreateResult{}, fmt.Errorf("%w: requested %d of product %d, only %d in stock", ErrValidation, line.Qty, line.ProID, product.Qty)
		}
		exp.Lines = append(exp.Lines, Line{ProID: line.ProID, Qty: line.Qty, ZoneID: line.ZoneID, Reason: line.Reason})
	}

	exportID, err := s.repo.Create(ctx, exp)
	if err == nil {
		exp.ExportID = exportID
		s.recordAudit(ctx, input.EmpID, "EXPORT_POST", fmt.Sprintf("%d", exportID), map[string]any{
			"items":  len(exp.Lines),
			"status": string(exp.Status),
		})
		s.bumpSummary(ctx)
		return CreateResult{Export: exp, Message: "export request submitted for approval"}, nil
	}
	if errors.Is(err, ErrValidation) {
		return CreateResult{}, err
	}
	if constraintViolation(err) {
		// The store rejected the data itself. Replaying would fail the
		// same way, so the caller gets the error instead of a queue slot.
		return CreateResult{}, fmt.Errorf("%w: store rejected export: %v", ErrValidation, err)
	}

	// Park the request in the journal only when the store looks unreachable,
	// so it survives the outage and is replayed by the reconciler.
	if s.journal == nil || !storeUnavailable(err) {
		return CreateResult{}, err
	}
	entry, jerr := s.journal.Push(ctx, exp)
	if jerr != nil {
		if s.logger != nil {
			s.logger.Error("export journal write failed",
				slog.Any("store_error", err),
				slog.Any("journal_error", jerr))
		}
		return CreateResult{}, err
	}
	if s.logger != nil {
		s.logger.Warn("export queued to fallback journal",
			slog.String("journal_ref", entry.Ref),
			slog.Any("error", err))
	}
	exp.JournalRef = entry.Ref
	s.recordAudit(ctx, input.EmpID, "EXPORT_QUEUE", entry.Ref, map[string]any{
		"items": len(exp.Lines),
	})
	return CreateResult{
		Export:  exp,
		Queued:  true,
		Message: "store unavailable, export queued for replay",
	}, nil
}

// Approve moves a pending request to approved and decrements stock one
// atomic step per line. The status flip happens first so two approvers
// cannot both apply the movement; if any decrement fails the applied ones
// are compensated and the request returns to pending.
func (s *Service) Approve(ctx context.Context, exportID, actorID int64) (Export, error) {
	exp, err := s.repo.Get(ctx, exportID)
	if err != nil {
		return Export{}, err
	}
	if err := s.repo.UpdateStatus(ctx, exportID, StatusPending, StatusApproved); err != nil {
		return Export{}, err
	}

	for i, line := range exp.Lines {
		if _, err := s.stock.AdjustStock(ctx, line.ProID, -line.Qty); err != nil {
			s.compensate(ctx, exportID, exp.Lines[:i])
			if errors.Is(err, products.ErrInsufficientStock) {
				return Export{}, fmt.Errorf("%w: product %d", ErrInsufficientStock, line.ProID)
			}
			return Export{}, err
		}
	}

	exp.Status = StatusApproved
	s.recordAudit(ctx, actorID, "EXPORT_APPROVE", fmt.Sprintf("%d", exportID), map[string]any{
		"items": len(exp.Lines),
	})
	s.bumpSummary(ctx)
	return exp, nil
}

// compensate re-adds quantities for lines already decremented and flips the
// request back to pending so it can be retried.
func (s *Service) compensate(ctx context.Context, exportID int64, applied []Line) {
	for _, line := range applied {
		if _, err := s.stock.AdjustStock(ctx, line.ProID, line.Qty); err != nil && s.logger != nil {
			s.logger.Error("export compensation failed",
				slog.Int64("export_id", exportID),
				slog.Int64("proid", line.ProID),
				slog.Any("error", err))
		}
	}
	if err := s.repo.UpdateStatus(ctx, exportID, StatusApproved, StatusPending); err != nil && s.logger != nil {
		s.logger.Error("export status rollback failed",
			slog.Int64("export_id", exportID),
			slog.Any("error", err))
	}
}

// Cancel marks a pending request canceled. Stock is untouched because only
// approval moves quantities.
func (s *Service) Cancel(ctx context.Context, exportID, actorID int64) (Export, error) {
	if err := s.repo.UpdateStatus(ctx, exportID, StatusPending, StatusCanceled); err != nil {
		return Export{}, err
	}
	exp, err := s.repo.Get(ctx, exportID)
	if err != nil {
		return Export{}, err
	}
	s.recordAudit(ctx, actorID, "EXPORT_CANCEL", fmt.Sprintf("%d", exportID), nil)
	s.bumpSummary(ctx)
	return exp, nil
}

// Delete removes a request that is still pending approval.
func (s *Service) Delete(ctx context.Context, exportID, actorID int64) error {
	exp, err := s.repo.Get(ctx, exportID)
	if err != nil {
		return err
	}
	if exp.Status != StatusPending {
		return fmt.Errorf("%w: only pending requests can be deleted", ErrInvalidState)
	}
	if err := s.repo.Delete(ctx, exportID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "EXPORT_DELETE", fmt.Sprintf("%d", exportID), nil)
	return nil
}

// List returns export headers, newest first.
func (s *Service) List(ctx context.Context) ([]Export, error) {
	return s.repo.List(ctx)
}

// Get fetches one export with lines.
func (s *Service) Get(ctx context.Context, exportID int64) (Export, error) {
	return s.repo.Get(ctx, exportID)
}

// Reconcile drains the fallback journal into the primary store. Entries keep
// their journal ref, so replaying one that already landed is a no-op. An
// entry the store rejects outright is parked on the dead list; one that
// fails for any other reason goes back to the queue tail for the next run.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	replayed := 0
	pending, err := s.journal.Len(ctx)
	if err != nil {
		return 0, err
	}
	for i := int64(0); i < pending; i++ {
		entry, ok, err := s.journal.Pop(ctx)
		if err != nil {
			return replayed, err
		}
		if !ok {
			break
		}
		exp := Export{
			JournalRef: entry.Ref,
			EmpID:      entry.EmpID,
			ExportDate: entry.ExportDate,
			Status:     StatusPending,
			Lines:      entry.Lines,
		}
		if _, err := s.repo.Create(ctx, exp); err != nil {
			if constraintViolation(err) {
				// The store will reject this entry every time. Park it on
				// the dead list so it cannot wedge the rest of the queue.
				if derr := s.journal.DeadLetter(ctx, entry); derr != nil {
					if rerr := s.journal.Requeue(ctx, entry); rerr != nil && s.logger != nil {
						s.logger.Error("export requeue failed",
							slog.String("journal_ref", entry.Ref),
							slog.Any("error", rerr))
					}
					return replayed, derr
				}
				if s.logger != nil {
					s.logger.Warn("export dead-lettered",
						slog.String("journal_ref", entry.Ref),
						slog.Any("error", err))
				}
				continue
			}
			if rerr := s.journal.Requeue(ctx, entry); rerr != nil && s.logger != nil {
				s.logger.Error("export requeue failed",
					slog.String("journal_ref", entry.Ref),
					slog.Any("error", rerr))
			}
			return replayed, err
		}
		replayed++
		if s.logger != nil {
			s.logger.Info("export replayed from journal", slog.String("journal_ref", entry.Ref))
		}
	}
	if replayed > 0 {
		s.bumpSummary(ctx)
	}
	return replayed, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "export",
		EntityID: entityID,
		Meta:     meta,
	})
}

func (s *Service) bumpSummary(ctx context.Context) {
	if s.summary == nil {
		return
	}
	if err := s.summary.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("dashboard invalidate", slog.Any("error", err))
	}
}
