package doctor

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Doctor, error)
	Get(ctx context.Context, id int64) (*Doctor, error)
	Create(ctx context.Context, d *Doctor) error
	UpdateContact(ctx context.Context, id int64, u *ContactUpdate) error
	Delete(ctx context.Context, id int64) error
}
