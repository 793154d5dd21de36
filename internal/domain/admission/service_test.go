package admission

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

type mockRepo struct {
	admissions map[uuid.UUID]*Admission
}

func newMockRepo() *mockRepo {
	return &mockRepo{admissions: make(map[uuid.UUID]*Admission)}
}

func (m *mockRepo) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	cp := *a
	m.admissions[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	a, ok := m.admissions[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	a, ok := m.admissions[id]
	if !ok {
		return nil, nil
	}
	return &Detail{Admission: *a, PatientName: "Test Patient", DoctorName: "Test Doctor", RoomNumber: "101", RoomType: "General"}, nil
}

func (m *mockRepo) FindActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Admission, error) {
	for _, a := range m.admissions {
		if a.PatientID == patientID && a.DischargeTime == nil {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) MarkDischarged(ctx context.Context, id uuid.UUID, t time.Time) (bool, error) {
	a, ok := m.admissions[id]
	if !ok || a.DischargeTime != nil {
		return false, nil
	}
	ts := t
	a.DischargeTime = &ts
	return true, nil
}

func (m *mockRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Detail, int, error) {
	var items []*Detail
	for _, a := range m.admissions {
		if activeOnly && a.DischargeTime != nil {
			continue
		}
		items = append(items, &Detail{Admission: *a})
	}
	return items, len(items), nil
}

func (m *mockRepo) snapshot() map[uuid.UUID]Admission {
	snap := make(map[uuid.UUID]Admission, len(m.admissions))
	for id, a := range m.admissions {
		snap[id] = *a
	}
	return snap
}

func (m *mockRepo) restore(snap map[uuid.UUID]Admission) {
	m.admissions = make(map[uuid.UUID]*Admission, len(snap))
	for id, a := range snap {
		cp := a
		m.admissions[id] = &cp
	}
}

type mockLedger struct {
	rooms map[uuid.UUID]*RoomInfo
	// failIncrement simulates losing the conditional-update race after
	// the precondition check has already passed.
	failIncrement bool
}

func newMockLedger() *mockLedger {
	return &mockLedger{rooms: make(map[uuid.UUID]*RoomInfo)}
}

func (m *mockLedger) FindRoom(ctx context.Context, id uuid.UUID) (*RoomInfo, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockLedger) Increment(ctx context.Context, id uuid.UUID) (bool, error) {
	r, ok := m.rooms[id]
	if m.failIncrement || !ok || r.CurrentOccupancy >= r.Capacity {
		return false, nil
	}
	r.CurrentOccupancy++
	return true, nil
}

func (m *mockLedger) Decrement(ctx context.Context, id uuid.UUID) (bool, error) {
	r, ok := m.rooms[id]
	if !ok || r.CurrentOccupancy <= 0 {
		return false, nil
	}
	r.CurrentOccupancy--
	return true, nil
}

func (m *mockLedger) snapshot() map[uuid.UUID]RoomInfo {
	snap := make(map[uuid.UUID]RoomInfo, len(m.rooms))
	for id, r := range m.rooms {
		snap[id] = *r
	}
	return snap
}

func (m *mockLedger) restore(snap map[uuid.UUID]RoomInfo) {
	m.rooms = make(map[uuid.UUID]*RoomInfo, len(snap))
	for id, r := range snap {
		cp := r
		m.rooms[id] = &cp
	}
}

type mockDirectory struct {
	patients map[uuid.UUID]bool
	doctors  map[uuid.UUID]*Doctor
}

func (m *mockDirectory) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.patients[id], nil
}

func (m *mockDirectory) FindDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// mockTx restores both stores when the scoped function fails, mirroring
// the rollback behavior of the real transaction manager.
type mockTx struct {
	repo   *mockRepo
	ledger *mockLedger
}

func (m *mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	repoSnap := m.repo.snapshot()
	ledgerSnap := m.ledger.snapshot()
	if err := fn(ctx); err != nil {
		m.repo.restore(repoSnap)
		m.ledger.restore(ledgerSnap)
		return err
	}
	return nil
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	ledger    *mockLedger
	patientID uuid.UUID
	doctorID  uuid.UUID
	roomID    uuid.UUID
}

func newFixture(capacity int) *fixture {
	repo := newMockRepo()
	ledger := newMockLedger()
	patientID := uuid.New()
	doctorID := uuid.New()
	roomID := uuid.New()

	ledger.rooms[roomID] = &RoomInfo{ID: roomID, Number: "101", Type: "General", Capacity: capacity, Active: true}
	dir := &mockDirectory{
		patients: map[uuid.UUID]bool{patientID: true},
		doctors:  map[uuid.UUID]*Doctor{doctorID: {ID: doctorID, Name: "Dr. Rao", Active: true}},
	}

	svc := NewService(repo, dir, dir, ledger, &mockTx{repo: repo, ledger: ledger}, zerolog.Nop())
	return &fixture{svc: svc, repo: repo, ledger: ledger, patientID: patientID, doctorID: doctorID, roomID: roomID}
}

func (f *fixture) admit(t *testing.T, patientID uuid.UUID) *Detail {
	t.Helper()
	d, err := f.svc.Admit(context.Background(), &AdmitRequest{
		PatientID:     patientID,
		RoomID:        f.roomID,
		DoctorID:      f.doctorID,
		AdmissionTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	return d
}

func (f *fixture) occupancy() int {
	return f.ledger.rooms[f.roomID].CurrentOccupancy
}

func TestAdmit_Preconditions(t *testing.T) {
	f := newFixture(1)
	now := time.Now()

	tests := []struct {
		name     string
		req      AdmitRequest
		wantKind apperr.Kind
	}{
		{"unknown patient", AdmitRequest{PatientID: uuid.New(), RoomID: f.roomID, DoctorID: f.doctorID, AdmissionTime: now}, apperr.KindNotFound},
		{"unknown doctor", AdmitRequest{PatientID: f.patientID, RoomID: f.roomID, DoctorID: uuid.New(), AdmissionTime: now}, apperr.KindNotFound},
		{"unknown room", AdmitRequest{PatientID: f.patientID, RoomID: uuid.New(), DoctorID: f.doctorID, AdmissionTime: now}, apperr.KindNotFound},
		{"missing time", AdmitRequest{PatientID: f.patientID, RoomID: f.roomID, DoctorID: f.doctorID}, apperr.KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Admit(context.Background(), &tt.req)
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, err)
			}
		})
	}

	if f.occupancy() != 0 {
		t.Errorf("failed admits must not change occupancy, got %d", f.occupancy())
	}
}

func TestAdmit_InactiveDoctor(t *testing.T) {
	f := newFixture(1)
	f.svc.doctors.(*mockDirectory).doctors[f.doctorID].Active = false

	_, err := f.svc.Admit(context.Background(), &AdmitRequest{
		PatientID: f.patientID, RoomID: f.roomID, DoctorID: f.doctorID, AdmissionTime: time.Now(),
	})
	if apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("expected invalid for inactive doctor, got %v", err)
	}
}

func TestAdmit_InactiveRoom(t *testing.T) {
	f := newFixture(1)
	f.ledger.rooms[f.roomID].Active = false

	_, err := f.svc.Admit(context.Background(), &AdmitRequest{
		PatientID: f.patientID, RoomID: f.roomID, DoctorID: f.doctorID, AdmissionTime: time.Now(),
	})
	if apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("expected invalid for inactive room, got %v", err)
	}
}

func TestAdmit_OneActiveAdmissionPerPatient(t *testing.T) {
	f := newFixture(2)
	f.admit(t, f.patientID)

	_, err := f.svc.Admit(context.Background(), &AdmitRequest{
		PatientID: f.patientID, RoomID: f.roomID, DoctorID: f.doctorID, AdmissionTime: time.Now(),
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict for second active admission, got %v", err)
	}
	if f.occupancy() != 1 {
		t.Errorf("occupancy = %d, want 1", f.occupancy())
	}
}

func TestAdmit_RoomFull(t *testing.T) {
	f := newFixture(1)
	f.admit(t, f.patientID)

	patientB := uuid.New()
	f.svc.patients.(*mockDirectory).patients[patientB] = true

	_, err := f.svc.Admit(context.Background(), &AdmitRequest{
		PatientID: patientB, RoomID: f.roomID, DoctorID: f.doctorID, AdmissionTime: time.Now(),
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict for full room, got %v", err)
	}
	if f.occupancy() != 1 {
		t.Errorf("occupancy = %d, want 1", f.occupancy())
	}
}

func TestAdmit_IncrementRaceRollsBack(t *testing.T) {
	f := newFixture(1)
	// Preconditions see a free bed, but the in-transaction increment
	// loses the conditional-update race.
	f.ledger.failIncrement = true

	_, err := f.svc.Admit(context.Background(), &AdmitRequest{
		PatientID: f.patientID, RoomID: f.roomID, DoctorID: f.doctorID, AdmissionTime: time.Now(),
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.repo.admissions) != 0 {
		t.Error("failed admit left an admission row behind")
	}
	if f.occupancy() != 0 {
		t.Errorf("occupancy = %d, want 0", f.occupancy())
	}
}

func TestDischarge_Lifecycle(t *testing.T) {
	f := newFixture(1)
	d := f.admit(t, f.patientID)

	if f.occupancy() != 1 {
		t.Fatalf("occupancy after admit = %d, want 1", f.occupancy())
	}

	out, err := f.svc.Discharge(context.Background(), d.ID, &DischargeRequest{DischargeTime: d.AdmissionTime.Add(time.Hour)})
	if err != nil {
		t.Fatalf("discharge: %v", err)
	}
	if out.DischargeTime == nil {
		t.Error("expected discharge time to be set")
	}
	if f.occupancy() != 0 {
		t.Errorf("occupancy after discharge = %d, want 0", f.occupancy())
	}

	// Freed bed accepts a new admission.
	patientB := uuid.New()
	f.svc.patients.(*mockDirectory).patients[patientB] = true
	f.admit(t, patientB)
	if f.occupancy() != 1 {
		t.Errorf("occupancy after re-admit = %d, want 1", f.occupancy())
	}
}

func TestDischarge_Twice(t *testing.T) {
	f := newFixture(1)
	d := f.admit(t, f.patientID)

	when := d.AdmissionTime.Add(time.Hour)
	if _, err := f.svc.Discharge(context.Background(), d.ID, &DischargeRequest{DischargeTime: when}); err != nil {
		t.Fatalf("first discharge: %v", err)
	}

	_, err := f.svc.Discharge(context.Background(), d.ID, &DischargeRequest{DischargeTime: when})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict on double discharge, got %v", err)
	}
	if f.occupancy() != 0 {
		t.Errorf("occupancy decremented more than once: %d", f.occupancy())
	}
}

func TestDischarge_TimeBeforeAdmission(t *testing.T) {
	f := newFixture(1)
	d := f.admit(t, f.patientID)

	_, err := f.svc.Discharge(context.Background(), d.ID, &DischargeRequest{DischargeTime: d.AdmissionTime.Add(-time.Hour)})
	if apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("expected invalid for discharge before admission, got %v", err)
	}
	if f.occupancy() != 1 {
		t.Errorf("occupancy = %d, want 1", f.occupancy())
	}
}

func TestDischarge_NotFound(t *testing.T) {
	f := newFixture(1)
	_, err := f.svc.Discharge(context.Background(), uuid.New(), &DischargeRequest{DischargeTime: time.Now()})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
