package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type Service struct {
	staff Repository
}

func NewService(staff Repository) *Service {
	return &Service{staff: staff}
}

var validRoles = map[string]bool{
	"doctor": true, "nurse": true, "technician": true, "receptionist": true, "administrator": true,
}

func (s *Service) Create(ctx context.Context, st *Staff) error {
	if st.FirstName == "" || st.LastName == "" {
		return apperr.Invalid("first_name and last_name are required")
	}
	if !validRoles[st.Role] {
		return apperr.Invalid("invalid staff role: %s", st.Role)
	}
	return s.staff.Create(ctx, st)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apperr.NotFound("staff %s not found", id)
	}
	return st, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u *Update) (*Staff, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if u.Role != nil && !validRoles[*u.Role] {
		return nil, apperr.Invalid("invalid staff role: %s", *u.Role)
	}
	if err := s.staff.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.staff.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	if role != "" && !validRoles[role] {
		return nil, 0, apperr.Invalid("invalid staff role: %s", role)
	}
	return s.staff.List(ctx, role, limit, offset)
}
