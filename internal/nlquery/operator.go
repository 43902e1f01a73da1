package nlquery

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator is a canonical comparison operator produced by the translator.
type Operator string

const (
	OpEQ  Operator = "EQ"
	OpGT  Operator = "GT"
	OpLT  Operator = "LT"
	OpGTE Operator = "GTE"
	OpLTE Operator = "LTE"
)

var storeOperators = map[Operator]string{
	OpGT:  "$gt",
	OpLT:  "$lt",
	OpGTE: "$gte",
	OpLTE: "$lte",
}

// StoreOperator returns the document-store operator key for o ("$gt", ...).
// Equality has no operator key: it is rendered as a bare value.
func (o Operator) StoreOperator() string {
	return storeOperators[o]
}

// Valid reports whether o is one of the canonical operators.
func (o Operator) Valid() bool {
	return o == OpEQ || storeOperators[o] != ""
}

// ParseOperator accepts the canonical names ("GT"), their lowercase form and
// the document-store spelling ("$gt").
func ParseOperator(s string) (Operator, error) {
	v := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	switch Operator(v) {
	case OpEQ, OpGT, OpLT, OpGTE, OpLTE:
		return Operator(v), nil
	}
	return "", fmt.Errorf("unknown comparison operator %q", s)
}

// UnmarshalYAML lets vocabulary files spell operators either way.
func (o *Operator) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
