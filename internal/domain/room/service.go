package room

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type Service struct {
	rooms Repository
}

func NewService(rooms Repository) *Service {
	return &Service{rooms: rooms}
}

func (s *Service) Create(ctx context.Context, r *Room) error {
	if r.Number == "" {
		return apperr.Invalid("number is required")
	}
	if r.Type == "" {
		return apperr.Invalid("type is required")
	}
	if r.Capacity < 1 {
		return apperr.Invalid("capacity must be at least 1")
	}
	r.CurrentOccupancy = 0
	return s.rooms.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Room, error) {
	r, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("room %s not found", id)
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u *Update) (*Room, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Capacity != nil {
		if *u.Capacity < 1 {
			return nil, apperr.Invalid("capacity must be at least 1")
		}
		if *u.Capacity < r.CurrentOccupancy {
			return nil, apperr.Conflict("capacity %d is below current occupancy %d", *u.Capacity, r.CurrentOccupancy)
		}
	}
	if u.Number != nil && *u.Number == "" {
		return nil, apperr.Invalid("number must not be empty")
	}
	if err := s.rooms.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.CurrentOccupancy > 0 {
		return apperr.Conflict("room %s is occupied", r.Number)
	}
	return s.rooms.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Room, int, error) {
	return s.rooms.List(ctx, limit, offset)
}

// Increment claims a bed in the room. Returns false when the room was
// already at capacity.
func (s *Service) Increment(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.rooms.IncrementOccupancy(ctx, id)
}

// Decrement releases a bed. Returns false when occupancy was already
// zero.
func (s *Service) Decrement(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.rooms.DecrementOccupancy(ctx, id)
}
