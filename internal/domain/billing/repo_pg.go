package billing

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

const billCols = `id, patient_id, admission_id, bill_date, due_date, total_amount, amount_paid, payment_status, notes, created_at, updated_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.PatientID, &b.AdmissionID, &b.BillDate, &b.DueDate,
		&b.TotalAmount, &b.AmountPaid, &b.PaymentStatus, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) CreateBill(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bills (id, patient_id, admission_id, bill_date, due_date, total_amount, amount_paid, payment_status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,0,$7,$8)`,
		b.ID, b.PatientID, b.AdmissionID, b.BillDate, b.DueDate, b.TotalAmount, b.PaymentStatus, b.Notes)
	return err
}

func (r *repoPG) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	b, err := scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *repoPG) UpdateBillPayment(ctx context.Context, id uuid.UUID, amountPaid float64, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bills SET amount_paid = $2, payment_status = $3, updated_at = NOW()
		WHERE id = $1`, id, amountPaid, status)
	return err
}

func (r *repoPG) UpdateBillStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bills SET payment_status = $2, updated_at = NOW()
		WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) ListBills(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM bills WHERE ($1::uuid IS NULL OR patient_id = $1)`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+billCols+` FROM bills
		WHERE ($1::uuid IS NULL OR patient_id = $1)
		ORDER BY bill_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

const itemCols = `id, bill_id, service_id, treatment_id, description, quantity, unit_price, line_total, created_at`

func scanItem(row pgx.Row) (*BillItem, error) {
	var i BillItem
	err := row.Scan(&i.ID, &i.BillID, &i.ServiceID, &i.TreatmentID, &i.Description,
		&i.Quantity, &i.UnitPrice, &i.LineTotal, &i.CreatedAt)
	return &i, err
}

func (r *repoPG) CreateItem(ctx context.Context, item *BillItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill_items (id, bill_id, service_id, treatment_id, description, quantity, unit_price, line_total)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.BillID, item.ServiceID, item.TreatmentID, item.Description,
		item.Quantity, item.UnitPrice, item.LineTotal)
	return err
}

func (r *repoPG) ListItems(ctx context.Context, billID uuid.UUID) ([]*BillItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM bill_items WHERE bill_id = $1 ORDER BY created_at, id`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BillItem
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const paymentCols = `id, bill_id, payment_date, amount, method, reference, notes, recorded_by, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.BillID, &p.PaymentDate, &p.Amount, &p.Method,
		&p.Reference, &p.Notes, &p.RecordedBy, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) CreatePayment(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payments (id, bill_id, payment_date, amount, method, reference, notes, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.BillID, p.PaymentDate, p.Amount, p.Method, p.Reference, p.Notes, p.RecordedBy)
	return err
}

func (r *repoPG) ListPayments(ctx context.Context, billID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE bill_id = $1 ORDER BY payment_date, created_at`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) SumPayments(ctx context.Context, billID uuid.UUID) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE bill_id = $1`, billID).Scan(&total)
	return total, err
}
