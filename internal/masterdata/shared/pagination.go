package shared

// ListFilters carries common listing parameters across masterdata modules.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	Category string
	Brand    string
	LowStock bool
}

// Offset computes the query offset for the current page.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
