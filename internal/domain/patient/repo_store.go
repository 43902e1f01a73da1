package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const (
	collectionName   = "patient"
	appointmentsName = "medicalappointments"
	doctorsName      = "doctors"

	completedStatus = "Completed"
)

type storeRepo struct {
	patients     docstore.Collection
	appointments docstore.Collection
	doctors      docstore.Collection
}

// NewStoreRepo returns a Repository backed by s.
func NewStoreRepo(s docstore.Store) Repository {
	return &storeRepo{
		patients:     s.Collection(collectionName),
		appointments: s.Collection(appointmentsName),
		doctors:      s.Collection(doctorsName),
	}
}

func (r *storeRepo) List(ctx context.Context) ([]*Patient, error) {
	return r.Find(ctx, nil)
}

func (r *storeRepo) Get(ctx context.Context, id int64) (*Patient, error) {
	doc, err := r.patients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient %d: %w", id, err)
	}
	var p Patient
	if err := docstore.Decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *storeRepo) Create(ctx context.Context, p *Patient) error {
	doc, err := docstore.Encode(p)
	if err != nil {
		return err
	}
	id, err := r.patients.Insert(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	p.ID = id
	return nil
}

func (r *storeRepo) Update(ctx context.Context, p *Patient) error {
	doc, err := docstore.Encode(p)
	if err != nil {
		return err
	}
	delete(doc, docstore.IDField)
	if err := r.patients.Update(ctx, p.ID, doc); err != nil {
		return fmt.Errorf("update patient %d: %w", p.ID, err)
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	if err := r.patients.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient %d: %w", id, err)
	}
	return nil
}

func (r *storeRepo) Find(ctx context.Context, filter docstore.Filter) ([]*Patient, error) {
	docs, err := r.patients.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find patients: %w", err)
	}
	return docstore.DecodeAll[*Patient](docs)
}

func (r *storeRepo) CompletedAppointments(ctx context.Context, patientID int64) ([]*Appointment, error) {
	docs, err := r.appointments.Find(ctx, docstore.Filter{
		"patient_id": patientID,
		"status":     completedStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("find appointments of patient %d: %w", patientID, err)
	}
	return docstore.DecodeAll[*Appointment](docs)
}

func (r *storeRepo) DoctorNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	in := make([]any, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	docs, err := r.doctors.Find(ctx, docstore.Filter{
		docstore.IDField: map[string]any{"$in": in},
	})
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	for _, d := range docs {
		id, ok := docstore.ID(d)
		if !ok {
			continue
		}
		names[id] = doctorName(d)
	}
	return names, nil
}

// doctorName prefers the single "name" field and falls back to
// first_name/last_name, the shape older doctor records were stored in.
func doctorName(d docstore.Document) string {
	if n, ok := d["name"].(string); ok && strings.TrimSpace(n) != "" {
		return n
	}
	first, _ := d["first_name"].(string)
	last, _ := d["last_name"].(string)
	return strings.TrimSpace(first + " " + last)
}
