package sales

import (
	"errors"
	"time"
)

// Sale is a completed point-of-sale transaction. Totals are computed server
// side from the catalog price at the time of sale.
type Sale struct {
	SaleID       int64     `json:"sale_id"`
	EmpID        int64     `json:"emp_id"`
	SaleDate     time.Time `json:"sale_date"`
	Total        float64   `json:"total"`
	TotalDisplay string    `json:"total_display,omitempty"`
	Lines        []Line    `json:"items,omitempty"`
}

// Line is one sold item.
type Line struct {
	LineID    int64   `json:"line_id"`
	SaleID    int64   `json:"sale_id"`
	ProID     int64   `json:"proid"`
	Qty       int64   `json:"qty"`
	SalePrice float64 `json:"sale_price"`
	LineTotal float64 `json:"line_total"`
}

// DaySummary aggregates sales for one calendar day.
type DaySummary struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
	Total float64   `json:"total"`
}

var (
	// ErrNotFound is returned when a sale does not exist.
	ErrNotFound = errors.New("sales: not found")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("sales: invalid input")
	// ErrInsufficientStock is returned when a sale would take stock negative.
	ErrInsufficientStock = errors.New("sales: insufficient stock")
)
