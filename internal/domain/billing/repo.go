package billing

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for bills, bill items and
// payments. GetBill returns (nil, nil) when no row matches. Bill items
// and payments have no update or delete path.
type Repository interface {
	CreateBill(ctx context.Context, b *Bill) error
	GetBill(ctx context.Context, id uuid.UUID) (*Bill, error)
	UpdateBillPayment(ctx context.Context, id uuid.UUID, amountPaid float64, status string) error
	UpdateBillStatus(ctx context.Context, id uuid.UUID, status string) error
	ListBills(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Bill, int, error)

	CreateItem(ctx context.Context, item *BillItem) error
	ListItems(ctx context.Context, billID uuid.UUID) ([]*BillItem, error)

	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, billID uuid.UUID) ([]*Payment, error)
	SumPayments(ctx context.Context, billID uuid.UUID) (float64, error)
}
