package medication

import (
	"context"
	"fmt"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const collectionName = "medications"

type storeRepo struct {
	coll docstore.Collection
}

// NewStoreRepo returns a Repository over the medications collection of s.
func NewStoreRepo(s docstore.Store) Repository {
	return &storeRepo{coll: s.Collection(collectionName)}
}

func (r *storeRepo) List(ctx context.Context) ([]*Medication, error) {
	docs, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return docstore.DecodeAll[*Medication](docs)
}

func (r *storeRepo) Get(ctx context.Context, id int64) (*Medication, error) {
	doc, err := r.coll.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get medication %d: %w", id, err)
	}
	var m Medication
	if err := docstore.Decode(doc, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *storeRepo) Create(ctx context.Context, m *Medication) error {
	doc, err := docstore.Encode(m)
	if err != nil {
		return err
	}
	id, err := r.coll.Insert(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert medication: %w", err)
	}
	m.ID = id
	return nil
}

func (r *storeRepo) Update(ctx context.Context, m *Medication) error {
	doc, err := docstore.Encode(m)
	if err != nil {
		return err
	}
	delete(doc, docstore.IDField)
	if err := r.coll.Update(ctx, m.ID, doc); err != nil {
		return fmt.Errorf("update medication %d: %w", m.ID, err)
	}
	return nil
}

func (r *storeRepo) SetExistence(ctx context.Context, id int64, existence int) error {
	if err := r.coll.Update(ctx, id, docstore.Document{"existence": existence}); err != nil {
		return fmt.Errorf("update existence of medication %d: %w", id, err)
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	if err := r.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete medication %d: %w", id, err)
	}
	return nil
}
