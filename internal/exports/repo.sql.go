package exports

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists export requests in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// constraintViolation reports whether err is an integrity-constraint
// rejection (SQLSTATE class 23). Replaying the same statement can never
// succeed, so these must not reach the fallback journal.
func constraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

// storeUnavailable reports whether err looks like an infrastructure failure.
// Any PgError means the server was reachable and answered; only errors
// without one (dial, timeout, pool) justify journaling for replay.
func storeUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	return !errors.As(err, &pgErr)
}

// Create inserts an export request with its lines. JournalRef is set when
// the record was replayed from the fallback journal; the unique index on it
// makes replays idempotent.
func (r *Repository) Create(ctx context.Context, exp Export) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var exportID int64
	err = tx.QueryRow(ctx, `INSERT INTO exports (journal_ref, emp_id, export_date, status)
VALUES (NULLIF($1,''), $2, $3, $4)
ON CONFLICT (journal_ref) DO NOTHING
RETURNING export_id`, exp.JournalRef, exp.EmpID, exp.ExportDate, string(exp.Status)).Scan(&exportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Journal entry already replayed.
			return 0, nil
		}
		return 0, err
	}
	for _, line := range exp.Lines {
		if _, err := tx.Exec(ctx, `INSERT INTO export_lines (export_id, proid, qty, zone_id, reason)
VALUES ($1,$2,$3,$4,$5)`, exportID, line.ProID, line.Qty, line.ZoneID, line.Reason); err != nil {
			return 0, err
		}
	}
	return exportID, tx.Commit(ctx)
}

// List returns export headers, newest first.
func (r *Repository) List(ctx context.Context) ([]Export, error) {
	rows, err := r.pool.Query(ctx, `SELECT export_id, COALESCE(journal_ref,''), emp_id, export_date, status
FROM exports ORDER BY export_date DESC, export_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Export{}
	for rows.Next() {
		var exp Export
		var status string
		if err := rows.Scan(&exp.ExportID, &exp.JournalRef, &exp.EmpID, &exp.ExportDate, &status); err != nil {
			return nil, err
		}
		exp.Status = Status(status)
		items = append(items, exp)
	}
	return items, rows.Err()
}

// Get fetches one export with lines.
func (r *Repository) Get(ctx context.Context, exportID int64) (Export, error) {
	var exp Export
	var status string
	err := r.pool.QueryRow(ctx, `SELECT export_id, COALESCE(journal_ref,''), emp_id, export_date, status
FROM exports WHERE export_id=$1`, exportID).
		Scan(&exp.ExportID, &exp.JournalRef, &exp.EmpID, &exp.ExportDate, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	exp.Status = Status(status)

	rows, err := r.pool.Query(ctx, `SELECT line_id, export_id, proid, qty, zone_id, reason
FROM export_lines WHERE export_id=$1 ORDER BY line_id ASC`, exportID)
	if err != nil {
		return Export{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.LineID, &line.ExportID, &line.ProID, &line.Qty, &line.ZoneID, &line.Reason); err != nil {
			return Export{}, err
		}
		exp.Lines = append(exp.Lines, line)
	}
	return exp, rows.Err()
}

// UpdateStatus transitions the export. The expected clause keeps the
// transition compare-and-set so two approvals cannot both win.
func (r *Repository) UpdateStatus(ctx context.Context, exportID int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE exports SET status=$1 WHERE export_id=$2 AND status=$3`,
		string(to), exportID, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, exportID); getErr != nil {
			return getErr
		}
		return ErrInvalidState
	}
	return nil
}

// Delete removes an export request and its lines.
func (r *Repository) Delete(ctx context.Context, exportID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM export_lines WHERE export_id=$1`, exportID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM exports WHERE export_id=$1`, exportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
