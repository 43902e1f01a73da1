package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinic/clinic/internal/platform/docstore"
)

const (
	collectionName = "payments"
	ordersName     = "orders"

	orderStatusDone = "done"
)

type storeRepo struct {
	store    docstore.Store
	payments docstore.Collection
	orders   docstore.Collection
}

func NewStoreRepo(s docstore.Store) Repository {
	return &storeRepo{
		store:    s,
		payments: s.Collection(collectionName),
		orders:   s.Collection(ordersName),
	}
}

func (r *storeRepo) ListActive(ctx context.Context) ([]*Payment, error) {
	docs, err := r.payments.Find(ctx, docstore.Filter{"active": true})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return docstore.DecodeAll[*Payment](docs)
}

func (r *storeRepo) Get(ctx context.Context, id int64) (*Payment, error) {
	doc, err := r.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	var p Payment
	if err := docstore.Decode(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *storeRepo) Settle(ctx context.Context, p *Payment) (bool, error) {
	p.Active = true
	doc, err := docstore.Encode(p)
	if err != nil {
		return false, err
	}
	found := true
	err = docstore.RunInTx(ctx, r.store, func(ctx context.Context) error {
		id, err := r.payments.Insert(ctx, doc)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		p.ID = id
		if err := r.orders.Delete(ctx, p.OrderID); err != nil {
			if !errors.Is(err, docstore.ErrNotFound) {
				return fmt.Errorf("delete order %d: %w", p.OrderID, err)
			}
			found = false
		}
		return nil
	})
	return found, err
}

func (r *storeRepo) Deactivate(ctx context.Context, id int64) error {
	if err := r.payments.Update(ctx, id, docstore.Document{"active": false}); err != nil {
		return fmt.Errorf("deactivate payment %d: %w", id, err)
	}
	return nil
}

func (r *storeRepo) PendingOrders(ctx context.Context) ([]*Order, error) {
	docs, err := r.orders.Find(ctx, docstore.Filter{"status": orderStatusDone})
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return docstore.DecodeAll[*Order](docs)
}
