package recipe

import (
	"context"
	"fmt"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const (
	collectionName   = "recipe"
	appointmentsName = "medicalappointments"
)

type storeRepo struct {
	store        docstore.Store
	recipes      docstore.Collection
	appointments docstore.Collection
}

func NewStoreRepo(s docstore.Store) Repository {
	return &storeRepo{
		store:        s,
		recipes:      s.Collection(collectionName),
		appointments: s.Collection(appointmentsName),
	}
}

func (r *storeRepo) List(ctx context.Context) ([]*Recipe, error) {
	docs, err := r.recipes.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return docstore.DecodeAll[*Recipe](docs)
}

func (r *storeRepo) Create(ctx context.Context, rec *Recipe) error {
	doc, err := docstore.Encode(rec)
	if err != nil {
		return err
	}
	return docstore.RunInTx(ctx, r.store, func(ctx context.Context) error {
		if rec.AppointmentID != nil {
			if _, err := r.appointments.Get(ctx, *rec.AppointmentID); err != nil {
				return fmt.Errorf("get appointment %d: %w", *rec.AppointmentID, err)
			}
		}
		id, err := r.recipes.Insert(ctx, doc)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		rec.ID = id
		if rec.AppointmentID == nil {
			return nil
		}
		if err := r.appointments.Update(ctx, *rec.AppointmentID, docstore.Document{"recipe_id": id}); err != nil {
			return fmt.Errorf("link recipe to appointment %d: %w", *rec.AppointmentID, err)
		}
		return nil
	})
}

func (r *storeRepo) AppointmentSummary(ctx context.Context, appointmentID int64) (*AppointmentSummary, error) {
	doc, err := r.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", appointmentID, err)
	}
	var a struct {
		ID        int64  `json:"_id"`
		PatientID int64  `json:"patient_id"`
		Patient   string `json:"patient"`
		DoctorID  int64  `json:"doctor_id"`
		Doctor    string `json:"doctor"`
	}
	if err := docstore.Decode(doc, &a); err != nil {
		return nil, err
	}
	return &AppointmentSummary{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		Patient:       a.Patient,
		DoctorID:      a.DoctorID,
		Doctor:        a.Doctor,
	}, nil
}
