package admission

import (
	"context"
	"errors"
	"time"

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

const admissionCols = `id, patient_id, room_id, doctor_id, admission_time, discharge_time, reason, created_at, updated_at`

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.PatientID, &a.RoomID, &a.DoctorID, &a.AdmissionTime,
		&a.DischargeTime, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

const detailCols = `a.id, a.patient_id, a.room_id, a.doctor_id, a.admission_time, a.discharge_time,
	a.reason, a.created_at, a.updated_at,
	p.first_name || ' ' || p.last_name,
	s.first_name || ' ' || s.last_name,
	rm.number, rm.type`

const detailJoins = ` FROM admissions a
	JOIN patients p ON p.id = a.patient_id
	JOIN staff s ON s.id = a.doctor_id
	JOIN rooms rm ON rm.id = a.room_id`

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	err := row.Scan(&d.ID, &d.PatientID, &d.RoomID, &d.DoctorID, &d.AdmissionTime,
		&d.DischargeTime, &d.Reason, &d.CreatedAt, &d.UpdatedAt,
		&d.PatientName, &d.DoctorName, &d.RoomNumber, &d.RoomType)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admissions (id, patient_id, room_id, doctor_id, admission_time, reason)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.PatientID, a.RoomID, a.DoctorID, a.AdmissionTime, a.Reason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	a, err := scanAdmission(r.conn(ctx).QueryRow(ctx, `SELECT `+admissionCols+` FROM admissions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *repoPG) GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	d, err := scanDetail(r.conn(ctx).QueryRow(ctx, `SELECT `+detailCols+detailJoins+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *repoPG) FindActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Admission, error) {
	a, err := scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+` FROM admissions WHERE patient_id = $1 AND discharge_time IS NULL`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// MarkDischarged closes the admission only if it is still open. The
// null check rides in the WHERE clause to shut the double-discharge
// race window.
func (r *repoPG) MarkDischarged(ctx context.Context, id uuid.UUID, dischargeTime time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET discharge_time = $2, updated_at = NOW()
		WHERE id = $1 AND discharge_time IS NULL`, id, dischargeTime)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Detail, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE a.discharge_time IS NULL`
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM admissions a`
	if activeOnly {
		countSQL += ` WHERE a.discharge_time IS NULL`
	}
	if err := r.conn(ctx).QueryRow(ctx, countSQL).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+detailCols+detailJoins+where+` ORDER BY a.admission_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
