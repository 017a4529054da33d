package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores the sale and decrements stock for every line in one
// transaction. The decrement carries the same non-negative guard the rest of
// the stock workflows use, so an oversell rolls the whole sale back.
func (r *Repository) Create(ctx context.Context, sale Sale) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var saleID int64
	err = tx.QueryRow(ctx, `INSERT INTO sales (emp_id, sale_date, total) VALUES ($1,$2,$3) RETURNING sale_id`,
		sale.EmpID, sale.SaleDate, sale.Total).Scan(&saleID)
	if err != nil {
		return 0, err
	}

	for _, line := range sale.Lines {
		tag, err := tx.Exec(ctx, `UPDATE products SET qty = qty - $1, updated_at = NOW()
WHERE proid = $2 AND qty - $1 >= 0`, line.Qty, line.ProID)
		if err != nil {
			return 0, err
		}
		if tag.RowsAffected() == 0 {
			return 0, ErrInsufficientStock
		}
		_, err = tx.Exec(ctx, `INSERT INTO sale_lines (sale_id, proid, qty, sale_price, line_total)
VALUES ($1,$2,$3,$4,$5)`, saleID, line.ProID, line.Qty, line.SalePrice, line.LineTotal)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return saleID, nil
}

// List returns sale headers inside the date range, newest first. Zero
// bounds are open.
func (r *Repository) List(ctx context.Context, from, to time.Time) ([]Sale, error) {
	query := `SELECT sale_id, emp_id, sale_date, total FROM sales`
	args := []any{}
	switch {
	case !from.IsZero() && !to.IsZero():
		query += ` WHERE sale_date >= $1 AND sale_date < $2`
		args = append(args, from, to)
	case !from.IsZero():
		query += ` WHERE sale_date >= $1`
		args = append(args, from)
	case !to.IsZero():
		query += ` WHERE sale_date < $1`
		args = append(args, to)
	}
	query += ` ORDER BY sale_date DESC, sale_id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Sale{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.SaleID, &s.EmpID, &s.SaleDate, &s.Total); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Get fetches one sale with its lines.
func (r *Repository) Get(ctx context.Context, saleID int64) (Sale, error) {
	var s Sale
	err := r.pool.QueryRow(ctx, `SELECT sale_id, emp_id, sale_date, total FROM sales WHERE sale_id=$1`, saleID).
		Scan(&s.SaleID, &s.EmpID, &s.SaleDate, &s.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT line_id, sale_id, proid, qty, sale_price, line_total
FROM sale_lines WHERE sale_id=$1 ORDER BY line_id ASC`, saleID)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.LineID, &line.SaleID, &line.ProID, &line.Qty, &line.SalePrice, &line.LineTotal); err != nil {
			return Sale{}, err
		}
		s.Lines = append(s.Lines, line)
	}
	return s, rows.Err()
}

// SummaryForDay aggregates count and revenue for one calendar day.
func (r *Repository) SummaryForDay(ctx context.Context, day time.Time) (DaySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	summary := DaySummary{Day: start}
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total), 0)
FROM sales WHERE sale_date >= $1 AND sale_date < $2`, start, end).
		Scan(&summary.Count, &summary.Total)
	return summary, err
}
