package suppliers

import "time"

// Supplier represents a purchase-order counterparty.
type Supplier struct {
	SupID     int64     `json:"sup_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
