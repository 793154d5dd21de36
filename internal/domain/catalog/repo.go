package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the service price list.
// Lookup methods return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, i *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindActiveByName(ctx context.Context, name string) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, u *Update) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Item, int, error)
}
