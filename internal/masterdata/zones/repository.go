package zones

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geepos/geepos/internal/masterdata/shared"
)

// Repository persists zones.
type Repository interface {
	List(ctx context.Context) ([]Zone, error)
	Get(ctx context.Context, id int64) (Zone, error)
	Create(ctx context.Context, z Zone) (Zone, error)
	Update(ctx context.Context, id int64, z Zone) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Zone, error) {
	rows, err := r.db.Query(ctx, `SELECT zone_id, name, detail, created_at, updated_at FROM zones ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Zone{}
	for rows.Next() {
		var z Zone
		if err := rows.Scan(&z.ZoneID, &z.Name, &z.Detail, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, z)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Zone, error) {
	var z Zone
	err := r.db.QueryRow(ctx, `SELECT zone_id, name, detail, created_at, updated_at FROM zones WHERE zone_id=$1`, id).
		Scan(&z.ZoneID, &z.Name, &z.Detail, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Zone{}, shared.ErrNotFound
		}
		return Zone{}, err
	}
	return z, nil
}

func (r *repository) Create(ctx context.Context, z Zone) (Zone, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO zones (name, detail, created_at, updated_at)
VALUES ($1,$2,NOW(),NOW()) RETURNING zone_id, created_at, updated_at`, z.Name, z.Detail).
		Scan(&z.ZoneID, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return Zone{}, err
	}
	return z, nil
}

func (r *repository) Update(ctx context.Context, id int64, z Zone) error {
	tag, err := r.db.Exec(ctx, `UPDATE zones SET name=$1, detail=$2, updated_at=NOW() WHERE zone_id=$3`, z.Name, z.Detail, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM zones WHERE zone_id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
