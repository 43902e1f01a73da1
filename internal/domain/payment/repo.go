package payment

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]*Payment, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	// Settle stores p as active and removes the order it pays for, atomically
	// where the store supports transactions. orderFound reports whether the
	// order existed.
	Settle(ctx context.Context, p *Payment) (orderFound bool, err error)
	Deactivate(ctx context.Context, id int64) error
	PendingOrders(ctx context.Context) ([]*Order, error)
}
