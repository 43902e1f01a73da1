package nlquery

import (
	"encoding/json"
	"strings"
)

// Clause is one (field, operator, value) triple recognized in a query.
type Clause struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Filter is the collapsed result of a translation: at most one clause per
// field, in order of first appearance, the last occurrence of a field
// supplying its operator and value. The zero Filter is empty.
type Filter struct {
	clauses []Clause
}

// Assemble folds clauses into a Filter.
func Assemble(clauses []Clause) Filter {
	var (
		out []Clause
		pos = make(map[string]int, len(clauses))
	)
	for _, c := range clauses {
		if i, ok := pos[c.Field]; ok {
			out[i] = c
			continue
		}
		pos[c.Field] = len(out)
		out = append(out, c)
	}
	return Filter{clauses: out}
}

// Empty reports whether nothing in the query was recognized.
func (f Filter) Empty() bool { return len(f.clauses) == 0 }

// Len returns the number of fields constrained by the filter.
func (f Filter) Len() int { return len(f.clauses) }

// Clauses returns a copy of the clauses in order of first appearance.
func (f Filter) Clauses() []Clause {
	out := make([]Clause, len(f.clauses))
	copy(out, f.clauses)
	return out
}

// Lookup returns the clause for field.
func (f Filter) Lookup(field string) (Clause, bool) {
	for _, c := range f.clauses {
		if c.Field == field {
			return c, true
		}
	}
	return Clause{}, false
}

// Fields returns the constrained fields in order.
func (f Filter) Fields() []string {
	out := make([]string, len(f.clauses))
	for i, c := range f.clauses {
		out[i] = c.Field
	}
	return out
}

// Map renders the filter in document-store form: equality clauses as bare
// values, comparisons as {"$gt": v} and so on.
func (f Filter) Map() map[string]any {
	m := make(map[string]any, len(f.clauses))
	for _, c := range f.clauses {
		if c.Op == OpEQ {
			m[c.Field] = c.Value
			continue
		}
		m[c.Field] = map[string]any{c.Op.StoreOperator(): c.Value}
	}
	return m
}

// MarshalJSON encodes the document-store form.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Map())
}

// String is a compact, stable rendering used in logs.
func (f Filter) String() string {
	parts := make([]string, len(f.clauses))
	for i, c := range f.clauses {
		parts[i] = c.Field + " " + string(c.Op) + " " + formatValue(c.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
