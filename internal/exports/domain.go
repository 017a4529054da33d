package exports

import (
	"errors"
	"time"
)

// Status is the export request lifecycle tag. The wire strings match what
// the clients branch on.
type Status string

const (
	StatusPending  Status = "pending approval"
	StatusApproved Status = "approved"
	StatusCanceled Status = "canceled"
)

// Export is a stock-reduction request subject to approval. Stock moves only
// when the request is approved.
type Export struct {
	ExportID   int64     `json:"export_id"`
	JournalRef string    `json:"journal_ref,omitempty"`
	EmpID      int64     `json:"emp_id"`
	ExportDate time.Time `json:"export_date"`
	Status     Status    `json:"status"`
	Lines      []Line    `json:"items,omitempty"`
}

// Line is one product leaving stock toward a zone.
type Line struct {
	LineID   int64  `json:"line_id"`
	ExportID int64  `json:"export_id"`
	ProID    int64  `json:"proid"`
	Qty      int64  `json:"qty"`
	ZoneID   int64  `json:"zone_id"`
	Reason   string `json:"reason"`
}

var (
	// ErrNotFound indicates the export does not exist.
	ErrNotFound = errors.New("exports: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("exports: invalid input")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("exports: invalid state transition")
	// ErrInsufficientStock means approval would push stock negative.
	ErrInsufficientStock = errors.New("exports: insufficient stock")
)
