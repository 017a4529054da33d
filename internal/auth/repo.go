package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geepos/geepos/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Employee, error)
	CreateSession(ctx context.Context, id string, empID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches an employee account by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*Employee, error) {
	var emp Employee
	err := r.pool.QueryRow(ctx, `SELECT emp_id, emp_name, emp_lname, username, password_hash, status, is_active, created_at, updated_at
FROM employees WHERE username=$1`, username).Scan(
		&emp.EmpID, &emp.EmpName, &emp.EmpLname, &emp.Username,
		&emp.PasswordHash, &emp.Status, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, empID int64, expiresAt time.Time, ip, ua string) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO sessions (id, emp_id, created_at, expires_at, ip, ua)
VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''))`, id, empID, now, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
