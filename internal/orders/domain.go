package orders

import (
	"errors"
	"time"
)

// Order is a purchase order awaiting import. Imported and ImportID are
// derived from the imports table at read time, never stored on the order.
type Order struct {
	OrderID   int64     `json:"order_id"`
	OrderNo   string    `json:"order_no"`
	SupID     int64     `json:"sup_id"`
	EmpID     int64     `json:"emp_id"`
	OrderDate time.Time `json:"order_date"`
	Note      string    `json:"note"`
	Imported  bool      `json:"imported"`
	ImportID  int64     `json:"import_id,omitempty"`
	Lines     []Line    `json:"items,omitempty"`
}

// Line is a single ordered product.
type Line struct {
	LineID  int64 `json:"line_id"`
	OrderID int64 `json:"order_id"`
	ProID   int64 `json:"proid"`
	Qty     int64 `json:"qty"`
}

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("orders: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("orders: invalid input")
	// ErrAlreadyImported blocks deleting an order an import references.
	ErrAlreadyImported = errors.New("orders: already imported")
)
