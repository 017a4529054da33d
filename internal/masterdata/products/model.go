package products

import "time"

// Product represents a catalog item. Qty is the authoritative stock level;
// all movement workflows change it through atomic increments, never through
// read-modify-write.
type Product struct {
	ProID     int64     `json:"proid"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Qty       int64     `json:"qty"`
	QtyMin    int64     `json:"qty_min"`
	CostPrice float64   `json:"cost_price"`
	SalePrice float64   `json:"sale_price"`
	ZoneID    int64     `json:"zone_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
