package treatment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for treatments. GetByID
// returns (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	Update(ctx context.Context, id uuid.UUID, u *Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Treatment, error)
	List(ctx context.Context, limit, offset int) ([]*Treatment, int, error)
}
