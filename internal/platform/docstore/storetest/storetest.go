// Package storetest holds the behaviour every docstore driver must share.
// Driver packages call Run from their tests.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/clinic/clinic/internal/platform/docstore"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) docstore.Store) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, open(t)) })
	t.Run("Find", func(t *testing.T) { testFind(t, open(t)) })
	t.Run("IDs", func(t *testing.T) { testIDs(t, open(t)) })
	t.Run("Transaction", func(t *testing.T) { testTransaction(t, open(t)) })
}

func testCRUD(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	c := s.Collection("patients")

	id, err := c.Insert(ctx, docstore.Document{"name": "Ana", "weight": 82.5, "_id": 99})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if id != 1 {
		t.Errorf("expected first id 1, got %d", id)
	}

	doc, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got, _ := docstore.ID(doc); got != id {
		t.Errorf("expected _id %d, got %v", id, doc["_id"])
	}
	if doc["name"] != "Ana" || doc["weight"] != 82.5 {
		t.Errorf("unexpected document: %v", doc)
	}

	if err := c.Update(ctx, id, docstore.Document{"weight": 80, "avatar": nil}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	doc, _ = c.Get(ctx, id)
	if doc["weight"] != float64(80) || doc["name"] != "Ana" {
		t.Errorf("update must merge fields, got %v", doc)
	}
	if v, ok := doc["avatar"]; !ok || v != nil {
		t.Errorf("expected avatar set to null, got %v (present=%v)", v, ok)
	}

	if err := c.Update(ctx, 1000, docstore.Document{"a": 1}); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := c.Get(ctx, id); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Get(deleted) = %v, want ErrNotFound", err)
	}
	if err := c.Delete(ctx, id); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Delete(deleted) = %v, want ErrNotFound", err)
	}
}

func seed(t *testing.T, c docstore.Collection) {
	t.Helper()
	docs := []docstore.Document{
		{"name": "Ana", "weight": 82.5, "height": 170, "bloodType": "O+", "gender": "Female",
			"allergies": []any{"pollen", "nuts"}, "active": true},
		{"name": "Luis", "weight": 60, "bloodType": "A-", "gender": "Male", "active": false, "avatar": nil},
		{"name": "Eva", "weight": "90", "gender": "Female"},
	}
	for _, d := range docs {
		if _, err := c.Insert(context.Background(), d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func ids(docs []docstore.Document) []int64 {
	out := []int64{}
	for _, d := range docs {
		id, _ := docstore.ID(d)
		out = append(out, id)
	}
	return out
}

func testFind(t *testing.T, s docstore.Store) {
	c := s.Collection("patients")
	seed(t, c)

	tests := []struct {
		name   string
		filter docstore.Filter
		want   []int64
	}{
		{"all", nil, []int64{1, 2, 3}},
		{"gt skips strings", docstore.Filter{"weight": map[string]any{"$gt": 80}}, []int64{1}},
		{"range", docstore.Filter{"weight": map[string]any{"$gte": 60, "$lt": 82.5}}, []int64{2}},
		{"eq", docstore.Filter{"gender": "Female"}, []int64{1, 3}},
		{"eq number", docstore.Filter{"weight": 60}, []int64{2}},
		{"eq string number", docstore.Filter{"weight": "90"}, []int64{3}},
		{"in", docstore.Filter{"bloodType": map[string]any{"$in": []any{"O+", "A-"}}}, []int64{1, 2}},
		{"ne includes missing", docstore.Filter{"bloodType": map[string]any{"$ne": "O+"}}, []int64{2, 3}},
		{"array element", docstore.Filter{"allergies": "nuts"}, []int64{1}},
		{"bool", docstore.Filter{"active": true}, []int64{1}},
		{"null or missing", docstore.Filter{"avatar": nil}, []int64{1, 2, 3}},
		{"null never matches value", docstore.Filter{"name": nil}, []int64{}},
		{"id range", docstore.Filter{"_id": map[string]any{"$gt": 1}}, []int64{2, 3}},
		{"string range", docstore.Filter{"name": map[string]any{"$gt": "B"}}, []int64{2, 3}},
		{"and", docstore.Filter{"gender": "Female", "bloodType": "O+"}, []int64{1}},
		{"no match", docstore.Filter{"gender": "Other"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := c.Find(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("Find() error: %v", err)
			}
			if got := ids(docs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Find(%v) ids = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}

	if _, err := c.Find(context.Background(), docstore.Filter{"weight": map[string]any{"$regex": "8"}}); err == nil {
		t.Error("expected error for unsupported operator")
	}
}

func testIDs(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	a := s.Collection("doctors")
	b := s.Collection("medications")

	for want := int64(1); want <= 3; want++ {
		id, err := a.Insert(ctx, docstore.Document{"n": want})
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		if id != want {
			t.Errorf("expected id %d, got %d", want, id)
		}
	}
	if err := a.Delete(ctx, 3); err != nil {
		t.Fatal(err)
	}
	id, _ := a.Insert(ctx, docstore.Document{})
	if id != 4 {
		t.Errorf("ids must not be reused after delete, got %d", id)
	}

	id, _ = b.Insert(ctx, docstore.Document{})
	if id != 1 {
		t.Errorf("collections keep separate sequences, got %d", id)
	}
}

func testTransaction(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	c := s.Collection("orders")
	id, err := c.Insert(ctx, docstore.Document{"status": "done"})
	if err != nil {
		t.Fatal(err)
	}

	err = docstore.RunInTx(ctx, s, func(ctx context.Context) error {
		if _, err := s.Collection("payments").Insert(ctx, docstore.Document{"order_id": id}); err != nil {
			return err
		}
		return c.Delete(ctx, id)
	})
	if err != nil {
		t.Fatalf("RunInTx() error: %v", err)
	}
	if _, err := c.Get(ctx, id); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected order deleted, got %v", err)
	}
	payments, _ := s.Collection("payments").Find(ctx, nil)
	if len(payments) != 1 {
		t.Errorf("expected 1 payment, got %d", len(payments))
	}
}
