package treatment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

// PatientDirectory is the read-only patient lookup the treatment
// service depends on.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// StaffDirectory reports whether a staff member is an active doctor.
type StaffDirectory interface {
	ActiveDoctor(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	treatments Repository
	patients   PatientDirectory
	doctors    StaffDirectory
}

func NewService(treatments Repository, patients PatientDirectory, doctors StaffDirectory) *Service {
	return &Service{treatments: treatments, patients: patients, doctors: doctors}
}

func (s *Service) Create(ctx context.Context, t *Treatment) error {
	if t.Name == "" {
		return apperr.Invalid("name is required")
	}
	if t.TreatmentDate.IsZero() {
		return apperr.Invalid("treatment_date is required")
	}

	exists, err := s.patients.PatientExists(ctx, t.PatientID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("patient %s not found", t.PatientID)
	}

	active, err := s.doctors.ActiveDoctor(ctx, t.DoctorID)
	if err != nil {
		return err
	}
	if !active {
		return apperr.Invalid("doctor %s is not an active doctor", t.DoctorID)
	}

	return s.treatments.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	t, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("treatment %s not found", id)
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u *Update) (*Treatment, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if u.Name != nil && *u.Name == "" {
		return nil, apperr.Invalid("name must not be empty")
	}
	if err := s.treatments.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.treatments.Delete(ctx, id)
}

// ListByPatient returns every treatment recorded for the patient,
// oldest first. Billing consumes this to collect treatment charges.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Treatment, error) {
	return s.treatments.ListByPatient(ctx, patientID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	return s.treatments.List(ctx, limit, offset)
}
