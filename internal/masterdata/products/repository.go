package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geepos/geepos/internal/masterdata/shared"
)

// ErrInsufficientStock is returned when a decrement would push stock below
// zero.
var ErrInsufficientStock = errors.New("products: insufficient stock")

// Repository persists products in PostgreSQL.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int64) (int64, error)
	CountLowStock(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `proid, name, category, brand, qty, qty_min, cost_price, sale_price, zone_id, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	appendFilter := func(clause string, value any) {
		argCount++
		placeholder := `$` + strconv.Itoa(argCount)
		query += ` AND ` + clause + placeholder
		countQuery += ` AND ` + clause + placeholder
		args = append(args, value)
	}

	if filters.Search != "" {
		appendFilter(`name ILIKE `, "%"+filters.Search+"%")
	}
	if filters.Category != "" {
		appendFilter(`category = `, filters.Category)
	}
	if filters.Brand != "" {
		appendFilter(`brand = `, filters.Brand)
	}
	if filters.LowStock {
		query += ` AND qty < qty_min`
		countQuery += ` AND qty < qty_min`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ProID, &p.Name, &p.Category, &p.Brand, &p.Qty, &p.QtyMin,
			&p.CostPrice, &p.SalePrice, &p.ZoneID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE proid=$1`, id).Scan(
		&p.ProID, &p.Name, &p.Category, &p.Brand, &p.Qty, &p.QtyMin,
		&p.CostPrice, &p.SalePrice, &p.ZoneID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO products (name, category, brand, qty, qty_min, cost_price, sale_price, zone_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
RETURNING proid, created_at, updated_at`,
		product.Name, product.Category, product.Brand, product.Qty, product.QtyMin,
		product.CostPrice, product.SalePrice, product.ZoneID).
		Scan(&product.ProID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET name=$1, category=$2, brand=$3, qty_min=$4, cost_price=$5, sale_price=$6, zone_id=$7, updated_at=NOW()
WHERE proid=$8`,
		product.Name, product.Category, product.Brand, product.QtyMin,
		product.CostPrice, product.SalePrice, product.ZoneID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE proid=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AdjustStock applies a single atomic increment or decrement and returns the
// new quantity. The guard clause keeps stock non-negative without a separate
// read, so concurrent movements against the same product cannot lose updates.
func (r *repository) AdjustStock(ctx context.Context, id int64, delta int64) (int64, error) {
	var newQty int64
	err := r.db.QueryRow(ctx, `UPDATE products SET qty = qty + $1, updated_at = NOW()
WHERE proid = $2 AND qty + $1 >= 0
RETURNING qty`, delta, id).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the product is missing or the decrement would go
			// negative; disambiguate for the caller.
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, ErrInsufficientStock
		}
		return 0, err
	}
	return newQty, nil
}

func (r *repository) CountLowStock(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE qty < qty_min`).Scan(&n)
	return n, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func sortOrder(sortBy, dir string) string {
	column := "proid"
	switch sortBy {
	case "name", "category", "brand", "qty", "cost_price", "sale_price":
		column = sortBy
	}
	if dir == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}
