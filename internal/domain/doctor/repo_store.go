package doctor

import (
	"context"
	"fmt"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const collectionName = "doctors"

type storeRepo struct {
	coll docstore.Collection
}

func NewStoreRepo(s docstore.Store) Repository {
	return &storeRepo{coll: s.Collection(collectionName)}
}

func (r *storeRepo) List(ctx context.Context) ([]*Doctor, error) {
	docs, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return docstore.DecodeAll[*Doctor](docs)
}

func (r *storeRepo) Get(ctx context.Context, id int64) (*Doctor, error) {
	doc, err := r.coll.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get doctor %d: %w", id, err)
	}
	var d Doctor
	if err := docstore.Decode(doc, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *storeRepo) Create(ctx context.Context, d *Doctor) error {
	doc, err := docstore.Encode(d)
	if err != nil {
		return err
	}
	id, err := r.coll.Insert(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	d.ID = id
	return nil
}

func (r *storeRepo) UpdateContact(ctx context.Context, id int64, u *ContactUpdate) error {
	set, err := docstore.Encode(u)
	if err != nil {
		return err
	}
	if err := r.coll.Update(ctx, id, set); err != nil {
		return fmt.Errorf("update doctor %d: %w", id, err)
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete doctor %d: %w", id, err)
	}
	return nil
}
