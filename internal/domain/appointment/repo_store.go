package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const (
	collectionName = "medicalappointments"
	patientsName   = "patient"
	doctorsName    = "doctors"
)

type storeRepo struct {
	appointments docstore.Collection
	patients     docstore.Collection
	doctors      docstore.Collection
}

func NewStoreRepo(s docstore.Store) Repository {
	return &storeRepo{
		appointments: s.Collection(collectionName),
		patients:     s.Collection(patientsName),
		doctors:      s.Collection(doctorsName),
	}
}

func (r *storeRepo) List(ctx context.Context) ([]*Appointment, error) {
	docs, err := r.appointments.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return docstore.DecodeAll[*Appointment](docs)
}

func (r *storeRepo) Get(ctx context.Context, id int64) (*Appointment, error) {
	doc, err := r.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	var a Appointment
	if err := docstore.Decode(doc, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *storeRepo) Create(ctx context.Context, a *Appointment) error {
	doc, err := docstore.Encode(a)
	if err != nil {
		return err
	}
	id, err := r.appointments.Insert(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	a.ID = id
	return nil
}

func (r *storeRepo) Update(ctx context.Context, a *Appointment) error {
	set, err := docstore.Encode(a)
	if err != nil {
		return err
	}
	delete(set, docstore.IDField)
	delete(set, "recipe_id")
	if err := r.appointments.Update(ctx, a.ID, set); err != nil {
		return fmt.Errorf("update appointment %d: %w", a.ID, err)
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	if err := r.appointments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	return nil
}

func (r *storeRepo) PatientOptions(ctx context.Context) ([]Option, error) {
	docs, err := r.patients.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return options(docs, func(d docstore.Document) string {
		first, _ := d["name"].(string)
		last, _ := d["lastName"].(string)
		return strings.TrimSpace(first + " " + last)
	}), nil
}

func (r *storeRepo) DoctorOptions(ctx context.Context) ([]Option, error) {
	docs, err := r.doctors.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return options(docs, func(d docstore.Document) string {
		name, _ := d["name"].(string)
		return name
	}), nil
}

func options(docs []docstore.Document, name func(docstore.Document) string) []Option {
	out := make([]Option, 0, len(docs))
	for _, d := range docs {
		id, ok := docstore.ID(d)
		if !ok {
			continue
		}
		out = append(out, Option{ID: id, Name: name(d)})
	}
	return out
}
