package admission

import (
	"time"

	"github.com/google/uuid"
)

// Admission maps to the admissions table. A null DischargeTime marks
// the admission as active; the schema enforces at most one active
// admission per patient.
type Admission struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	RoomID        uuid.UUID  `db:"room_id" json:"room_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"admitting_doctor_id"`
	AdmissionTime time.Time  `db:"admission_time" json:"admission_datetime"`
	DischargeTime *time.Time `db:"discharge_time" json:"discharge_datetime,omitempty"`
	Reason        *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the admission has not been discharged.
func (a *Admission) Active() bool {
	return a.DischargeTime == nil
}

// Detail is an admission joined with display fields from the patient,
// doctor and room rows.
type Detail struct {
	Admission
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	RoomNumber  string `json:"room_number"`
	RoomType    string `json:"room_type"`
}

// AdmitRequest is the wire body for admitting a patient.
type AdmitRequest struct {
	PatientID     uuid.UUID `json:"patient_id"`
	RoomID        uuid.UUID `json:"room_id"`
	DoctorID      uuid.UUID `json:"admitting_doctor_id"`
	AdmissionTime time.Time `json:"admission_datetime"`
	Reason        *string   `json:"reason,omitempty"`
}

// DischargeRequest is the wire body for discharging an admission.
type DischargeRequest struct {
	DischargeTime time.Time `json:"discharge_datetime"`
}
