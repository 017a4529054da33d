package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// StockCounter reports how many products sit below their minimum quantity.
type StockCounter interface {
	CountLowStock(ctx context.Context) (int, error)
}

// SummaryCache invalidates cached dashboard counters.
type SummaryCache interface {
	Bump(ctx context.Context) error
}

// NewLowStockScanHandler returns the handler for TaskLowStockScan. The scan
// logs the count and invalidates the dashboard snapshot so the next request
// recomputes it; replenishment stays a human decision.
func NewLowStockScanHandler(counter StockCounter, summaryCache SummaryCache, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		n, err := counter.CountLowStock(ctx)
		if err != nil {
			return err
		}
		if logger != nil {
			if n > 0 {
				logger.Warn("low stock scan", slog.Int("below_minimum", n))
			} else {
				logger.Info("low stock scan", slog.Int("below_minimum", 0))
			}
		}
		if summaryCache != nil {
			if err := summaryCache.Bump(ctx); err != nil && logger != nil {
				logger.Warn("dashboard invalidate", slog.Any("error", err))
			}
		}
		return nil
	}
}
