package admission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

// PatientDirectory is the read-only patient lookup the lifecycle
// manager depends on.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Doctor is the projection of a staff row the lifecycle manager needs.
type Doctor struct {
	ID     uuid.UUID
	Name   string
	Active bool
}

// StaffDirectory resolves admitting doctors. FindDoctor returns
// (nil, nil) when the staff member does not exist or is not a doctor.
type StaffDirectory interface {
	FindDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
}

// RoomInfo is the projection of a room row the lifecycle manager needs.
type RoomInfo struct {
	ID               uuid.UUID
	Number           string
	Type             string
	Capacity         int
	CurrentOccupancy int
	Active           bool
}

// OccupancyLedger is the atomic capacity accounting the lifecycle
// manager drives. Increment returns false when the room is full,
// Decrement returns false when occupancy is already zero; both run as
// single conditional updates inside the caller's transaction scope.
type OccupancyLedger interface {
	FindRoom(ctx context.Context, id uuid.UUID) (*RoomInfo, error)
	Increment(ctx context.Context, id uuid.UUID) (bool, error)
	Decrement(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	admissions Repository
	patients   PatientDirectory
	doctors    StaffDirectory
	rooms      OccupancyLedger
	tx         db.TxManager
	logger     zerolog.Logger
}

func NewService(admissions Repository, patients PatientDirectory, doctors StaffDirectory, rooms OccupancyLedger, tx db.TxManager, logger zerolog.Logger) *Service {
	return &Service{
		admissions: admissions,
		patients:   patients,
		doctors:    doctors,
		rooms:      rooms,
		tx:         tx,
		logger:     logger,
	}
}

// Admit creates an admission after checking every precondition, then
// claims a bed and inserts the row in one transaction. Losing the
// capacity race to a concurrent admit rolls everything back.
func (s *Service) Admit(ctx context.Context, req *AdmitRequest) (*Detail, error) {
	if req.AdmissionTime.IsZero() {
		return nil, apperr.Invalid("admission_datetime is required")
	}

	exists, err := s.patients.PatientExists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("patient %s not found", req.PatientID)
	}

	doctor, err := s.doctors.FindDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, apperr.NotFound("doctor %s not found", req.DoctorID)
	}
	if !doctor.Active {
		return nil, apperr.Invalid("doctor %s is not active", req.DoctorID)
	}

	room, err := s.rooms.FindRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperr.NotFound("room %s not found", req.RoomID)
	}
	if !room.Active {
		return nil, apperr.Invalid("room %s is not active", room.Number)
	}
	if room.CurrentOccupancy >= room.Capacity {
		return nil, apperr.Conflict("room %s is full", room.Number)
	}

	active, err := s.admissions.FindActiveByPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.Conflict("patient %s already has an active admission", req.PatientID)
	}

	adm := &Admission{
		PatientID:     req.PatientID,
		RoomID:        req.RoomID,
		DoctorID:      req.DoctorID,
		AdmissionTime: req.AdmissionTime,
		Reason:        req.Reason,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.rooms.Increment(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race for the last bed since the precondition check.
			return apperr.Conflict("room %s is full", room.Number)
		}
		return s.admissions.Create(ctx, adm)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("admission_id", adm.ID.String()).
		Str("patient_id", req.PatientID.String()).
		Str("room", room.Number).
		Msg("patient admitted")

	return s.getDetail(ctx, adm.ID)
}

// Discharge closes an admission and releases its bed. The conditional
// discharge update guards against a concurrent double discharge; the
// decrement only runs when that update hit the row.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID, req *DischargeRequest) (*Detail, error) {
	if req.DischargeTime.IsZero() {
		return nil, apperr.Invalid("discharge_datetime is required")
	}

	adm, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if adm == nil {
		return nil, apperr.NotFound("admission %s not found", id)
	}
	if !adm.Active() {
		return nil, apperr.Conflict("admission %s is already discharged", id)
	}
	if req.DischargeTime.Before(adm.AdmissionTime) {
		return nil, apperr.Invalid("discharge_datetime must not be before admission time")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.admissions.MarkDischarged(ctx, id, req.DischargeTime)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("admission %s is already discharged", id)
		}
		ok, err = s.rooms.Decrement(ctx, adm.RoomID)
		if err != nil {
			return err
		}
		if !ok {
			// Occupancy must be positive while an active admission holds
			// the room; a failed decrement means the books are wrong.
			return apperr.Internal(fmt.Errorf("occupancy underflow for room %s", adm.RoomID), "occupancy accounting failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("admission_id", id.String()).
		Str("patient_id", adm.PatientID.String()).
		Msg("patient discharged")

	return s.getDetail(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	return s.getDetail(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Detail, int, error) {
	return s.admissions.List(ctx, activeOnly, limit, offset)
}

func (s *Service) getDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	d, err := s.admissions.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("admission %s not found", id)
	}
	return d, nil
}
