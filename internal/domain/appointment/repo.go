package appointment

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Appointment, error)
	Get(ctx context.Context, id int64) (*Appointment, error)
	Create(ctx context.Context, a *Appointment) error
	// Update rewrites the scheduling fields of a. recipe_id is left as stored.
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	PatientOptions(ctx context.Context) ([]Option, error)
	DoctorOptions(ctx context.Context) ([]Option, error)
}
