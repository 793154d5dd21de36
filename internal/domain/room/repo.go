package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for rooms, including the
// occupancy ledger. GetByID returns (nil, nil) when no row matches.
//
// IncrementOccupancy and DecrementOccupancy must each execute as a
// single conditional update so that two concurrent admissions racing
// for the last bed cannot both succeed. The boolean result reports
// whether the guarded update hit a row.
type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	Update(ctx context.Context, id uuid.UUID, u *Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Room, int, error)
	IncrementOccupancy(ctx context.Context, id uuid.UUID) (bool, error)
	DecrementOccupancy(ctx context.Context, id uuid.UUID) (bool, error)
}
