package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type Service struct {
	items Repository
}

func NewService(items Repository) *Service {
	return &Service{items: items}
}

func (s *Service) Create(ctx context.Context, i *Item) error {
	if i.Name == "" {
		return apperr.Invalid("name is required")
	}
	if i.Cost < 0 {
		return apperr.Invalid("cost must not be negative")
	}
	existing, err := s.items.FindActiveByName(ctx, i.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("service %q already exists", i.Name)
	}
	return s.items.Create(ctx, i)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, apperr.NotFound("service %s not found", id)
	}
	return i, nil
}

// FindActiveByName is the price lookup billing depends on. Returns
// (nil, nil) when no active service carries the name.
func (s *Service) FindActiveByName(ctx context.Context, name string) (*Item, error) {
	return s.items.FindActiveByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u *Update) (*Item, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if u.Cost != nil && *u.Cost < 0 {
		return nil, apperr.Invalid("cost must not be negative")
	}
	if u.Name != nil && *u.Name == "" {
		return nil, apperr.Invalid("name must not be empty")
	}
	if err := s.items.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Item, int, error) {
	return s.items.List(ctx, limit, offset)
}
