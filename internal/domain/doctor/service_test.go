package doctor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/docstore"
	"github.com/clinic/clinic/internal/platform/validate"
)

// -- Mock Repository --

type mockDoctorRepo struct {
	store  map[int64]*Doctor
	nextID int64
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{store: make(map[int64]*Doctor)}
}

func (m *mockDoctorRepo) List(_ context.Context) ([]*Doctor, error) {
	out := []*Doctor{}
	for _, d := range m.store {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDoctorRepo) Get(_ context.Context, id int64) (*Doctor, error) {
	d, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("get doctor %d: %w", id, docstore.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.nextID++
	d.ID = m.nextID
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) UpdateContact(_ context.Context, id int64, u *ContactUpdate) error {
	d, ok := m.store[id]
	if !ok {
		return docstore.ErrNotFound
	}
	d.Name, d.PhoneNumber, d.Email, d.License = u.Name, u.PhoneNumber, u.Email, u.License
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.store[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func newTestService() *Service {
	svc := NewService(newMockDoctorRepo(), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func validDoctor() *Doctor {
	return &Doctor{
		Name:        "Meredith Grey",
		License:     "k123456789",
		DateOfBirth: "1978-09-27",
		PhoneNumber: "5512345678",
		Email:       "mgrey@example.com",
		Specialties: []Specialty{{Specialty: "General Surgery", ConsultationFee: 800, Services: []string{"checkup"}}},
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *validate.Errors
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Errors, got %v", err)
	}
	return verr.Fields
}

// -- Service Tests --

func TestCreateDoctor(t *testing.T) {
	svc := newTestService()
	d := validDoctor()
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != 1 {
		t.Errorf("expected id 1, got %d", d.ID)
	}
}

func TestCreateDoctor_WithoutBirthDate(t *testing.T) {
	d := validDoctor()
	d.DateOfBirth = ""
	if err := newTestService().CreateDoctor(context.Background(), d); err != nil {
		t.Errorf("date of birth is optional, got %v", err)
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*Doctor)
	}{
		{"single name", "name", func(d *Doctor) { d.Name = "Meredith" }},
		{"digits in name", "name", func(d *Doctor) { d.Name = "Meredith Gr3y" }},
		{"short license", "license", func(d *Doctor) { d.License = "12345" }},
		{"letters in license", "license", func(d *Doctor) { d.License = "abc4567890" }},
		{"short phone", "phone_number", func(d *Doctor) { d.PhoneNumber = "555123" }},
		{"phone with plus", "phone_number", func(d *Doctor) { d.PhoneNumber = "+551234567" }},
		{"email", "email", func(d *Doctor) { d.Email = "mgrey.example.com" }},
		{"future birth", "date_of_birth", func(d *Doctor) { d.DateOfBirth = "2030-01-01" }},
		{"malformed birth", "date_of_birth", func(d *Doctor) { d.DateOfBirth = "27/09/1978" }},
		{"no specialties", "specialties", func(d *Doctor) { d.Specialties = nil }},
		{"unnamed specialty", "specialties", func(d *Doctor) { d.Specialties[0].Specialty = "" }},
		{"free consultation", "specialties", func(d *Doctor) { d.Specialties[0].ConsultationFee = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDoctor()
			tt.mutate(d)
			fields := validationFields(t, newTestService().CreateDoctor(context.Background(), d))
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestUpdateContact_KeepsSpecialties(t *testing.T) {
	svc := newTestService()
	svc.CreateDoctor(context.Background(), validDoctor())

	got, err := svc.UpdateContact(context.Background(), 1, &ContactUpdate{
		Name: "Meredith Grey Shepherd", PhoneNumber: "5587654321",
		Email: "meredith@example.com", License: "0987654321",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Meredith Grey Shepherd" || got.License != "0987654321" {
		t.Errorf("contact not updated: %+v", got)
	}
	if len(got.Specialties) != 1 || got.DateOfBirth != "1978-09-27" {
		t.Errorf("expected specialties and birth date untouched, got %+v", got)
	}
}

func TestUpdateContact_Errors(t *testing.T) {
	svc := newTestService()
	svc.CreateDoctor(context.Background(), validDoctor())

	_, err := svc.UpdateContact(context.Background(), 1, &ContactUpdate{Name: "X"})
	fields := validationFields(t, err)
	for _, f := range []string{"name", "phone_number", "email", "license"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected error on %s", f)
		}
	}

	u := &ContactUpdate{Name: "Derek Shepherd", PhoneNumber: "5511112222", Email: "d@example.com", License: "1111111111"}
	if _, err := svc.UpdateContact(context.Background(), 42, u); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteDoctor(t *testing.T) {
	svc := newTestService()
	svc.CreateDoctor(context.Background(), validDoctor())

	d, err := svc.DeleteDoctor(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Meredith Grey" {
		t.Errorf("expected deleted doctor returned, got %+v", d)
	}
	list, _ := svc.ListDoctors(context.Background())
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
	if _, err := svc.DeleteDoctor(context.Background(), 1); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
