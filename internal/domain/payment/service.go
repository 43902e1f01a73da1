package payment

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/docstore"
	"github.com/clinic/clinic/internal/platform/validate"
)

const rfcLength = 13

type Service struct {
	payments Repository
	logger   zerolog.Logger
}

func NewService(payments Repository, logger zerolog.Logger) *Service {
	return &Service{payments: payments, logger: logger.With().Str("service", "payment").Logger()}
}

// ListPayments returns active payments only.
func (s *Service) ListPayments(ctx context.Context) ([]*Payment, error) {
	return s.payments.ListActive(ctx)
}

// CreatePayment records p and clears the order it settles.
func (s *Service) CreatePayment(ctx context.Context, p *Payment) error {
	if err := validatePayment(p); err != nil {
		return err
	}
	found, err := s.payments.Settle(ctx, p)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Warn().Int64("payment_id", p.ID).Int64("order_id", p.OrderID).Msg("paid order not found")
	}
	s.logger.Info().Int64("payment_id", p.ID).Int64("order_id", p.OrderID).Float64("total", p.Total).Msg("payment recorded")
	return nil
}

// DeletePayment deactivates payment id. Inactive payments read as missing.
func (s *Service) DeletePayment(ctx context.Context, id int64) (*Payment, error) {
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("payment %d is inactive: %w", id, docstore.ErrNotFound)
	}
	if err := s.payments.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	p.Active = false
	s.logger.Info().Int64("payment_id", id).Msg("payment deactivated")
	return p, nil
}

// PendingOrders lists orders ready to be paid with their totals filled in.
func (s *Service) PendingOrders(ctx context.Context) ([]*Order, error) {
	orders, err := s.payments.PendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.computeTotal()
	}
	return orders, nil
}

func validatePayment(p *Payment) error {
	v := validate.New()
	v.Check(validate.Alphanumeric(p.Name), "name", "Name must be a non-empty alphanumeric string.")
	v.Check(p.OrderID >= 1, "order_id", "Order id must be an integer greater than 0.")
	v.Check(p.Total > 0, "total", "Total must be greater than 0.")
	v.Check(utf8.RuneCountInString(p.RFC) == rfcLength && validate.Alphanumeric(p.RFC),
		"rfc", "RFC must have 13 alphanumeric characters.")
	v.Check(validate.NotBlank(p.PaymentType), "payment_type", "Payment type is required.")
	if len(p.Items) == 0 {
		v.Add("items", "At least one item is required.")
	}
	for _, it := range p.Items {
		if !validate.NotBlank(it.Name) {
			v.Add("items", "Each item must have a name.")
		}
		if it.Quantity <= 0 {
			v.Add("items", "Item quantity must be greater than 0.")
		}
		if it.Price < 0 {
			v.Add("items", "Item price must be a non-negative number.")
		}
	}
	return v.Err()
}
