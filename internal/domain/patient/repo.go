package patient

import (
	"context"

	"github.com/clinic/clinic/internal/platform/docstore"
)

type Repository interface {
	List(ctx context.Context) ([]*Patient, error)
	Get(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, filter docstore.Filter) ([]*Patient, error)
	// CompletedAppointments returns the patient's appointments whose status
	// is "Completed", without doctor names.
	CompletedAppointments(ctx context.Context, patientID int64) ([]*Appointment, error)
	// DoctorNames resolves doctor ids to display names. Unknown ids are
	// absent from the result.
	DoctorNames(ctx context.Context, ids []int64) (map[int64]string, error)
}
