package auth

import "time"

// Employee represents an account able to log into GeePOS. Status carries the
// role tag consumed by the permission layer.
type Employee struct {
	EmpID        int64
	EmpName      string
	EmpLname     string
	Username     string
	PasswordHash string
	Status       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
