package imports

import (
	"errors"
	"time"
)

// Status tracks how far an import got while applying its stock increments.
type Status string

const (
	// StatusCompleted means every line was applied and the source order
	// was consumed.
	StatusCompleted Status = "completed"
	// StatusPartial means some but not all lines were applied. The source
	// order is kept so the remainder can be re-imported.
	StatusPartial Status = "partial"
	// StatusFailed means no line was applied.
	StatusFailed Status = "failed"
)

// Import records goods received against a purchase order.
type Import struct {
	ImpID      int64     `json:"imp_id"`
	OrderID    int64     `json:"order_id"`
	EmpID      int64     `json:"emp_id"`
	ImpDate    time.Time `json:"imp_date"`
	Status     Status    `json:"status"`
	TotalPrice float64   `json:"total_price"`
	Lines      []Line    `json:"items,omitempty"`
}

// Line is one received product with its confirmed cost price.
type Line struct {
	LineID    int64   `json:"line_id"`
	ImpID     int64   `json:"imp_id"`
	ProID     int64   `json:"proid"`
	Qty       int64   `json:"qty"`
	CostPrice float64 `json:"cost_price"`
	Applied   bool    `json:"applied"`
}

// Result summarises an import run: how many stock increments landed and
// whether the source order was consumed.
type Result struct {
	Import       Import `json:"import"`
	Total        int    `json:"total"`
	Applied      int    `json:"applied"`
	OrderDeleted bool   `json:"order_deleted"`
	Message      string `json:"message"`
}

var (
	// ErrNotFound indicates the import does not exist.
	ErrNotFound = errors.New("imports: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("imports: invalid input")
	// ErrOrderImported blocks importing an order twice.
	ErrOrderImported = errors.New("imports: order already imported")
	// ErrNoLines means the source order has nothing to receive.
	ErrNoLines = errors.New("imports: order has no lines")
)
