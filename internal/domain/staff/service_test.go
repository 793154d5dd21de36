package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type mockRepo struct {
	staff map[uuid.UUID]*Staff
}

func newMockRepo() *mockRepo {
	return &mockRepo{staff: make(map[uuid.UUID]*Staff)}
}

func (m *mockRepo) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	cp := *s
	m.staff[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, u *Update) error {
	s := m.staff[id]
	if u.Role != nil {
		s.Role = *u.Role
	}
	if u.Active != nil {
		s.Active = *u.Active
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.staff, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, role string, limit, offset int) ([]*Staff, int, error) {
	var items []*Staff
	for _, s := range m.staff {
		if role == "" || s.Role == role {
			items = append(items, s)
		}
	}
	return items, len(items), nil
}

func TestCreate_RoleValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Create(context.Background(), &Staff{FirstName: "R", LastName: "K", Role: "janitor"})
	if apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("expected invalid role error, got %v", err)
	}

	err = svc.Create(context.Background(), &Staff{FirstName: "R", LastName: "K", Role: "doctor", Active: true})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpdate_Deactivate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	st := Staff{FirstName: "R", LastName: "K", Role: "doctor", Active: true}
	if err := svc.Create(context.Background(), &st); err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	updated, err := svc.Update(context.Background(), st.ID, &Update{Active: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Active {
		t.Error("expected staff to be deactivated")
	}
}

func TestList_InvalidRoleFilter(t *testing.T) {
	svc := NewService(newMockRepo())
	_, _, err := svc.List(context.Background(), "wizard", 10, 0)
	if apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("expected invalid error, got %v", err)
	}
}
