package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for patients. Lookup methods
// return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, id uuid.UUID, u *Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
