package admission

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for admissions. Lookup
// methods return (nil, nil) when no row matches.
//
// MarkDischarged must set the discharge timestamp only if it is still
// null, as a single conditional update. The boolean result reports
// whether the row transitioned; false means a concurrent discharge
// already closed the admission.
type Repository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error)
	FindActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Admission, error)
	MarkDischarged(ctx context.Context, id uuid.UUID, dischargeTime time.Time) (bool, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Detail, int, error)
}
