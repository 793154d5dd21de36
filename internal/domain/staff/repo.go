package staff

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for staff. GetByID returns
// (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	Update(ctx context.Context, id uuid.UUID, u *Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error)
}
