package medication

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Medication, error)
	Get(ctx context.Context, id int64) (*Medication, error)
	Create(ctx context.Context, m *Medication) error
	Update(ctx context.Context, m *Medication) error
	SetExistence(ctx context.Context, id int64, existence int) error
	Delete(ctx context.Context, id int64) error
}
