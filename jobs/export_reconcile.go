package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Reconciler drains the export fallback journal into the primary store.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// NewExportReconcileHandler returns the handler for TaskExportReconcile.
// Replay is idempotent on the store side, so a retried task cannot insert
// an entry twice.
func NewExportReconcileHandler(reconciler Reconciler, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReconcilePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		replayed, err := reconciler.Reconcile(ctx)
		if err != nil {
			if logger != nil {
				logger.Warn("export reconcile",
					slog.Int("replayed", replayed),
					slog.Any("error", err))
			}
			return err
		}
		if replayed > 0 && logger != nil {
			logger.Info("export reconcile", slog.Int("replayed", replayed))
		}
		return nil
	}
}
