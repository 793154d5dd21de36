package room

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const roomCols = `id, number, type, capacity, current_occupancy, active, created_at, updated_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(&rm.ID, &rm.Number, &rm.Type, &rm.Capacity, &rm.CurrentOccupancy,
		&rm.Active, &rm.CreatedAt, &rm.UpdatedAt)
	return &rm, err
}

func (r *repoPG) Create(ctx context.Context, rm *Room) error {
	rm.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO rooms (id, number, type, capacity, current_occupancy, active)
		VALUES ($1,$2,$3,$4,0,$5)`,
		rm.ID, rm.Number, rm.Type, rm.Capacity, rm.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	rm, err := scanRoom(r.conn(ctx).QueryRow(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rm, err
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, u *Update) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE rooms SET
			number     = COALESCE($2, number),
			type       = COALESCE($3, type),
			capacity   = COALESCE($4, capacity),
			active     = COALESCE($5, active),
			updated_at = NOW()
		WHERE id = $1`,
		id, u.Number, u.Type, u.Capacity, u.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Room, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+roomCols+` FROM rooms ORDER BY number LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rm)
	}
	return items, total, rows.Err()
}

// IncrementOccupancy claims a bed. The capacity guard lives in the
// WHERE clause so the check and the write are one atomic statement.
func (r *repoPG) IncrementOccupancy(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE rooms SET current_occupancy = current_occupancy + 1, updated_at = NOW()
		WHERE id = $1 AND current_occupancy < capacity`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DecrementOccupancy releases a bed, refusing to go below zero.
func (r *repoPG) DecrementOccupancy(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE rooms SET current_occupancy = current_occupancy - 1, updated_at = NOW()
		WHERE id = $1 AND current_occupancy > 0`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
