package products

import (
	"errors"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if p.Qty < 0 {
		return errors.New("quantity cannot be negative")
	}
	if p.QtyMin < 0 {
		return errors.New("minimum quantity cannot be negative")
	}
	if p.CostPrice < 0 || p.SalePrice < 0 {
		return errors.New("prices cannot be negative")
	}
	return nil
}
