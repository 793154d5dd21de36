package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Treatment maps to the treatments table. Name doubles as the billing
// key: the billing engine resolves a price by matching it against the
// service catalog.
type Treatment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Name          string    `db:"name" json:"name"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	TreatmentDate time.Time `db:"treatment_date" json:"treatment_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Update carries the optional fields of a partial treatment update.
type Update struct {
	Name          *string    `json:"name,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	TreatmentDate *time.Time `json:"treatment_date,omitempty"`
}
