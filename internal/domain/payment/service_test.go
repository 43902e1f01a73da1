package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/docstore"
	"github.com/clinic/clinic/internal/platform/docstore/memstore"
	"github.com/clinic/clinic/internal/platform/validate"
)

func newTestService() (*Service, docstore.Store) {
	store := memstore.New()
	return NewService(NewStoreRepo(store), zerolog.Nop()), store
}

func seedOrder(t *testing.T, store docstore.Store, status string, items ...Item) int64 {
	t.Helper()
	doc, err := docstore.Encode(&Order{Status: status, Items: items})
	if err != nil {
		t.Fatal(err)
	}
	delete(doc, "total")
	id, err := store.Collection(ordersName).Insert(context.Background(), doc)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return id
}

func validPayment(orderID int64) *Payment {
	return &Payment{
		Name: "Consulta1", OrderID: orderID, Total: 250,
		RFC: "GODE561231GR8", PaymentType: "card",
		Items: []Item{{Name: "Ibuprofen", Quantity: 2, Price: 125}},
	}
}

func TestCreatePayment_SettlesOrder(t *testing.T) {
	svc, store := newTestService()
	orderID := seedOrder(t, store, "done", Item{Name: "Ibuprofen", Quantity: 2, Price: 125})

	p := validPayment(orderID)
	if err := svc.CreatePayment(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 1 || !p.Active {
		t.Errorf("expected active payment 1, got %+v", p)
	}
	if _, err := store.Collection(ordersName).Get(context.Background(), orderID); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected order removed, got %v", err)
	}
}

func TestCreatePayment_MissingOrderStillRecords(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.CreatePayment(context.Background(), validPayment(99)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, _ := svc.ListPayments(context.Background())
	if len(list) != 1 {
		t.Errorf("expected 1 payment, got %d", len(list))
	}
}

func TestCreatePayment_Validation(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*Payment)
	}{
		{"name with space", "name", func(p *Payment) { p.Name = "Pago uno" }},
		{"empty name", "name", func(p *Payment) { p.Name = "" }},
		{"order zero", "order_id", func(p *Payment) { p.OrderID = 0 }},
		{"zero total", "total", func(p *Payment) { p.Total = 0 }},
		{"short rfc", "rfc", func(p *Payment) { p.RFC = "GODE561231" }},
		{"rfc symbols", "rfc", func(p *Payment) { p.RFC = "GODE-561231GR" }},
		{"payment type", "payment_type", func(p *Payment) { p.PaymentType = " " }},
		{"no items", "items", func(p *Payment) { p.Items = nil }},
		{"zero quantity", "items", func(p *Payment) { p.Items[0].Quantity = 0 }},
		{"negative price", "items", func(p *Payment) { p.Items[0].Price = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			p := validPayment(1)
			tt.mutate(p)
			var verr *validate.Errors
			if err := svc.CreatePayment(context.Background(), p); !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestDeletePayment_SoftDeletes(t *testing.T) {
	svc, store := newTestService()
	svc.CreatePayment(context.Background(), validPayment(1))

	p, err := svc.DeletePayment(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Active {
		t.Error("expected returned payment to be inactive")
	}
	list, _ := svc.ListPayments(context.Background())
	if len(list) != 0 {
		t.Errorf("expected no active payments, got %d", len(list))
	}
	if _, err := store.Collection(collectionName).Get(context.Background(), 1); err != nil {
		t.Errorf("expected payment kept in store, got %v", err)
	}
	if _, err := svc.DeletePayment(context.Background(), 1); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected not found for inactive payment, got %v", err)
	}
	if _, err := svc.DeletePayment(context.Background(), 5); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected not found for missing payment, got %v", err)
	}
}

func TestPendingOrders_ComputesTotals(t *testing.T) {
	svc, store := newTestService()
	seedOrder(t, store, "done",
		Item{Name: "Ibuprofen", Quantity: 2, Price: 12.5},
		Item{Name: "Amoxicillin", Quantity: 1, Price: 80})
	seedOrder(t, store, "preparing", Item{Name: "Aspirin", Quantity: 1, Price: 10})

	orders, err := svc.PendingOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 pending order, got %d", len(orders))
	}
	if orders[0].Total != 105 {
		t.Errorf("expected total 105, got %v", orders[0].Total)
	}
}
