package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExportReconcile replays journaled export requests into the store.
	TaskExportReconcile = "exports:reconcile"
	// TaskLowStockScan reports products that fell under their minimum.
	TaskLowStockScan = "stock:lowscan"
)

// ReconcilePayload carries scheduling metadata for a reconcile run.
type ReconcilePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewExportReconcileTask constructs an Asynq task for journal replay.
func NewExportReconcileTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ReconcilePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportReconcile, body, asynq.Queue(QueueDefault)), nil
}

// LowStockScanPayload carries scheduling metadata for a low stock scan.
type LowStockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs an Asynq task for the low stock scan.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}
