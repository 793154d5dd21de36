package billing

import (
	"time"

	"github.com/google/uuid"
)

// Bill payment statuses. Pending is the initial state before any
// payment; Paid and Cancelled are settled and accept no payments.
const (
	StatusPending       = "Pending"
	StatusPartiallyPaid = "Partially Paid"
	StatusPaid          = "Paid"
	StatusCancelled     = "Cancelled"
)

// Payment methods accepted by the ledger.
var validPaymentMethods = map[string]bool{
	"Cash": true, "E-Banking": true, "Credit Card": true,
	"Debit Card": true, "Insurance": true, "Other": true,
}

// Bill maps to the bills table. AmountPaid and PaymentStatus are
// written only by the payment ledger.
type Bill struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AdmissionID   *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	BillDate      time.Time  `db:"bill_date" json:"bill_date"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	TotalAmount   float64    `db:"total_amount" json:"total_amount"`
	AmountPaid    float64    `db:"amount_paid" json:"amount_paid"`
	PaymentStatus string     `db:"payment_status" json:"payment_status"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	Items    []*BillItem `json:"items,omitempty"`
	Payments []*Payment  `json:"payments,omitempty"`
}

// Settled reports whether the bill accepts no further payments.
func (b *Bill) Settled() bool {
	return b.PaymentStatus == StatusPaid || b.PaymentStatus == StatusCancelled
}

// BillItem is one line of a bill. Items are immutable after creation.
type BillItem struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BillID      uuid.UUID  `db:"bill_id" json:"bill_id"`
	ServiceID   *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	TreatmentID *uuid.UUID `db:"treatment_id" json:"treatment_id,omitempty"`
	Description string     `db:"description" json:"description"`
	Quantity    int        `db:"quantity" json:"quantity"`
	UnitPrice   float64    `db:"unit_price" json:"unit_price"`
	LineTotal   float64    `db:"line_total" json:"line_total"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Payment is one append-only entry in the payment ledger.
type Payment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BillID      uuid.UUID `db:"bill_id" json:"bill_id"`
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`
	Amount      float64   `db:"amount" json:"amount"`
	Method      string    `db:"method" json:"payment_method"`
	Reference   *string   `db:"reference" json:"reference,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	RecordedBy  string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// GenerateBillRequest is the wire body for generating a bill.
type GenerateBillRequest struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	AdmissionID *uuid.UUID `json:"admission_id,omitempty"`
	BillDate    time.Time  `json:"bill_date"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// RecordPaymentRequest is the wire body for recording a payment.
type RecordPaymentRequest struct {
	PaymentDate time.Time `json:"payment_date"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"payment_method"`
	Reference   *string   `json:"reference,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
}

// PaymentResult pairs a created payment with the refreshed bill.
type PaymentResult struct {
	Payment *Payment `json:"payment"`
	Bill    *Bill    `json:"bill"`
}
