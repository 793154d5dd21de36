package staff

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

const staffCols = `id, first_name, last_name, role, specialty, phone, email, active, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Role, &s.Specialty,
		&s.Phone, &s.Email, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, role, specialty, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.FirstName, s.LastName, s.Role, s.Specialty, s.Phone, s.Email, s.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	s, err := scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, u *Update) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			role       = COALESCE($4, role),
			specialty  = COALESCE($5, specialty),
			phone      = COALESCE($6, phone),
			email      = COALESCE($7, email),
			active     = COALESCE($8, active),
			updated_at = NOW()
		WHERE id = $1`,
		id, u.FirstName, u.LastName, u.Role, u.Specialty, u.Phone, u.Email, u.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	where := ``
	args := []interface{}{}
	if role != "" {
		where = ` WHERE role = $3`
		args = append(args, role)
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM staff`
	if role != "" {
		countSQL += ` WHERE role = $1`
	}
	if err := r.conn(ctx).QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append([]interface{}{limit, offset}, args...)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+staffCols+` FROM staff`+where+` ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
