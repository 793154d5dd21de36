package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

// PatientDirectory is the read-only patient lookup the appointment
// service depends on.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// StaffDirectory reports whether a staff member is an active doctor.
type StaffDirectory interface {
	ActiveDoctor(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	appointments Repository
	patients     PatientDirectory
	doctors      StaffDirectory
}

func NewService(appointments Repository, patients PatientDirectory, doctors StaffDirectory) *Service {
	return &Service{appointments: appointments, patients: patients, doctors: doctors}
}

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.ScheduledAt.IsZero() {
		return apperr.Invalid("scheduled_at is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return apperr.Invalid("invalid appointment status: %s", a.Status)
	}

	exists, err := s.patients.PatientExists(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("patient %s not found", a.PatientID)
	}

	active, err := s.doctors.ActiveDoctor(ctx, a.DoctorID)
	if err != nil {
		return err
	}
	if !active {
		return apperr.Invalid("doctor %s is not an active doctor", a.DoctorID)
	}

	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("appointment %s not found", id)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u *Update) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status != nil {
		if !validStatuses[*u.Status] {
			return nil, apperr.Invalid("invalid appointment status: %s", *u.Status)
		}
		if a.Status == StatusCancelled && *u.Status != StatusCancelled {
			return nil, apperr.Conflict("cancelled appointment cannot be reopened")
		}
	}
	if err := s.appointments.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.appointments.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, patientID, doctorID *uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, patientID, doctorID, limit, offset)
}
