package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return apperr.Invalid("first_name and last_name are required")
	}
	if !validGenders[p.Gender] {
		return apperr.Invalid("invalid gender: %s", p.Gender)
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u *Update) (*Patient, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if u.Gender != nil && !validGenders[*u.Gender] {
		return nil, apperr.Invalid("invalid gender: %s", *u.Gender)
	}
	if err := s.patients.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}
