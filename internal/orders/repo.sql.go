package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	InsertOrder(ctx context.Context, order Order) (int64, error)
	InsertLine(ctx context.Context, line Line) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// List returns orders with the imported flag derived in one query, so the
// order/import pairing is read under a single snapshot.
func (r *Repository) List(ctx context.Context, pendingOnly bool) ([]Order, error) {
	query := `SELECT o.order_id, o.order_no, o.sup_id, o.emp_id, o.order_date, o.note,
       i.imp_id IS NOT NULL AS imported, COALESCE(i.imp_id, 0)
FROM purchase_orders o
LEFT JOIN imports i ON i.order_id = o.order_id`
	if pendingOnly {
		query += `
WHERE i.imp_id IS NULL`
	}
	query += `
ORDER BY o.order_date DESC, o.order_id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.OrderID, &o.OrderNo, &o.SupID, &o.EmpID, &o.OrderDate, &o.Note, &o.Imported, &o.ImportID); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// Get fetches one order with its lines and derived imported state.
func (r *Repository) Get(ctx context.Context, orderID int64) (Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT o.order_id, o.order_no, o.sup_id, o.emp_id, o.order_date, o.note,
       i.imp_id IS NOT NULL, COALESCE(i.imp_id, 0)
FROM purchase_orders o
LEFT JOIN imports i ON i.order_id = o.order_id
WHERE o.order_id=$1`, orderID).
		Scan(&o.OrderID, &o.OrderNo, &o.SupID, &o.EmpID, &o.OrderDate, &o.Note, &o.Imported, &o.ImportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT line_id, order_id, proid, qty FROM purchase_order_lines WHERE order_id=$1 ORDER BY line_id ASC`, orderID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.LineID, &line.OrderID, &line.ProID, &line.Qty); err != nil {
			return Order{}, err
		}
		o.Lines = append(o.Lines, line)
	}
	return o, rows.Err()
}

// Delete removes an order and its lines.
func (r *Repository) Delete(ctx context.Context, orderID int64) error {
	return r.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteOrder(ctx, orderID)
	})
}

func (r *txRepository) InsertOrder(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_orders (order_no, sup_id, emp_id, order_date, note)
VALUES ($1,$2,$3,$4,$5) RETURNING order_id`,
		order.OrderNo, order.SupID, order.EmpID, order.OrderDate, order.Note).Scan(&id)
	return id, err
}

func (r *txRepository) InsertLine(ctx context.Context, line Line) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO purchase_order_lines (order_id, proid, qty) VALUES ($1,$2,$3)`,
		line.OrderID, line.ProID, line.Qty)
	return err
}

func (r *txRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM purchase_order_lines WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `DELETE FROM purchase_orders WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
