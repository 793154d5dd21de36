package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for appointments. GetByID
// returns (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, u *Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, patientID, doctorID *uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
