package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("masterdata: invalid input")
	// ErrInUse indicates the record is referenced by other data.
	ErrInUse = errors.New("masterdata: record in use")
)
