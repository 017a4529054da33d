package imports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists imports in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the import header and lines in one transaction and returns
// the generated id. The unique index on order_id turns a concurrent second
// receive of the same order into ErrOrderImported instead of a double.
func (r *Repository) Create(ctx context.Context, imp Import) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var impID int64
	err = tx.QueryRow(ctx, `INSERT INTO imports (order_id, emp_id, imp_date, status, total_price)
VALUES ($1,$2,$3,$4,$5) RETURNING imp_id`,
		imp.OrderID, imp.EmpID, imp.ImpDate, string(imp.Status), imp.TotalPrice).Scan(&impID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrOrderImported
		}
		return 0, err
	}
	for _, line := range imp.Lines {
		if _, err := tx.Exec(ctx, `INSERT INTO import_lines (imp_id, proid, qty, cost_price, applied)
VALUES ($1,$2,$3,$4,$5)`, impID, line.ProID, line.Qty, line.CostPrice, line.Applied); err != nil {
			return 0, err
		}
	}
	return impID, tx.Commit(ctx)
}

// UpdateStatus sets the aggregate outcome after the stock increments ran.
func (r *Repository) UpdateStatus(ctx context.Context, impID int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE imports SET status=$1 WHERE imp_id=$2`, string(status), impID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkLineApplied flags a line whose stock increment landed.
func (r *Repository) MarkLineApplied(ctx context.Context, impID, proID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE import_lines SET applied=true WHERE imp_id=$1 AND proid=$2`, impID, proID)
	return err
}

// List returns import headers, newest first.
func (r *Repository) List(ctx context.Context) ([]Import, error) {
	rows, err := r.pool.Query(ctx, `SELECT imp_id, order_id, emp_id, imp_date, status, total_price
FROM imports ORDER BY imp_date DESC, imp_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Import{}
	for rows.Next() {
		var imp Import
		var status string
		if err := rows.Scan(&imp.ImpID, &imp.OrderID, &imp.EmpID, &imp.ImpDate, &status, &imp.TotalPrice); err != nil {
			return nil, err
		}
		imp.Status = Status(status)
		items = append(items, imp)
	}
	return items, rows.Err()
}

// Get fetches one import with its lines.
func (r *Repository) Get(ctx context.Context, impID int64) (Import, error) {
	var imp Import
	var status string
	err := r.pool.QueryRow(ctx, `SELECT imp_id, order_id, emp_id, imp_date, status, total_price
FROM imports WHERE imp_id=$1`, impID).
		Scan(&imp.ImpID, &imp.OrderID, &imp.EmpID, &imp.ImpDate, &status, &imp.TotalPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Import{}, ErrNotFound
		}
		return Import{}, err
	}
	imp.Status = Status(status)

	rows, err := r.pool.Query(ctx, `SELECT line_id, imp_id, proid, qty, cost_price, applied
FROM import_lines WHERE imp_id=$1 ORDER BY line_id ASC`, impID)
	if err != nil {
		return Import{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.LineID, &line.ImpID, &line.ProID, &line.Qty, &line.CostPrice, &line.Applied); err != nil {
			return Import{}, err
		}
		imp.Lines = append(imp.Lines, line)
	}
	return imp, rows.Err()
}
