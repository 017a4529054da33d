package zones

import "time"

// Zone is a named storage location referenced by export requests.
type Zone struct {
	ZoneID    int64     `json:"zone_id"`
	Name      string    `json:"name"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
