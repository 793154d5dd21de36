package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, u *Update) error {
	p := m.patients[id]
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Phone != nil {
		p.Phone = u.Phone
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		items = append(items, p)
	}
	return items, len(items), nil
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	tests := []struct {
		name    string
		patient Patient
		wantErr bool
	}{
		{"valid", Patient{FirstName: "Asha", LastName: "Rao", Gender: "female"}, false},
		{"missing name", Patient{Gender: "male"}, true},
		{"bad gender", Patient{FirstName: "A", LastName: "B", Gender: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), &tt.patient)
			if tt.wantErr && apperr.KindOf(err) != apperr.KindInvalid {
				t.Errorf("expected invalid error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Get(context.Background(), uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := Patient{FirstName: "Asha", LastName: "Rao", Gender: "female"}
	if err := svc.Create(context.Background(), &p); err != nil {
		t.Fatalf("create: %v", err)
	}

	phone := "555-0101"
	updated, err := svc.Update(context.Background(), p.ID, &Update{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Asha" {
		t.Errorf("unchanged field modified: %s", updated.FirstName)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Errorf("phone not updated: %v", updated.Phone)
	}
}
