package docstore

import "testing"

type sample struct {
	ID     int64    `json:"_id"`
	Name   string   `json:"name"`
	Weight float64  `json:"weight"`
	Tags   []string `json:"tags,omitempty"`
}

func TestEncodeDecode(t *testing.T) {
	doc, err := Encode(sample{ID: 3, Name: "Ana", Weight: 60, Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if doc["name"] != "Ana" {
		t.Errorf("expected name Ana, got %v", doc["name"])
	}
	if doc["weight"] != float64(60) {
		t.Errorf("expected weight float64(60), got %#v", doc["weight"])
	}

	var back sample
	if err := Decode(doc, &back); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if back.ID != 3 || back.Name != "Ana" || len(back.Tags) != 1 {
		t.Errorf("unexpected round trip result: %+v", back)
	}
}

func TestDecodeAll(t *testing.T) {
	docs := []Document{
		{"_id": float64(1), "name": "a"},
		{"_id": float64(2), "name": "b"},
	}
	out, err := DecodeAll[sample](docs)
	if err != nil {
		t.Fatalf("DecodeAll() error: %v", err)
	}
	if len(out) != 2 || out[1].ID != 2 {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestDecode_TypeMismatch(t *testing.T) {
	var s sample
	if err := Decode(Document{"name": 5}, &s); err == nil {
		t.Error("expected error decoding number into string field")
	}
}
