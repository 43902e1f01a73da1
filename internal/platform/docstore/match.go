package docstore

import (
	"reflect"
)

// Match reports whether doc satisfies f. It is the reference semantics the
// SQL drivers compile to: values of different kinds never compare, so
// {"weight": {"$gt": 80}} does not match a weight stored as "90".
func Match(doc Document, f Filter) bool {
	for field, cond := range f {
		v, present := doc[field]
		ops, isOps := cond.(map[string]any)
		if !isOps {
			if !matchEq(v, present, cond) {
				return false
			}
			continue
		}
		for op, want := range ops {
			if !matchOp(v, present, op, want) {
				return false
			}
		}
	}
	return true
}

func matchOp(v any, present bool, op string, want any) bool {
	switch op {
	case "$eq":
		return matchEq(v, present, want)
	case "$ne":
		return !matchEq(v, present, want)
	case "$in":
		list, _ := want.([]any)
		for _, w := range list {
			if matchEq(v, present, w) {
				return true
			}
		}
		return false
	case "$gt", "$gte", "$lt", "$lte":
		if !present {
			return false
		}
		c, ok := compare(v, want)
		if !ok {
			return false
		}
		switch op {
		case "$gt":
			return c > 0
		case "$gte":
			return c >= 0
		case "$lt":
			return c < 0
		default:
			return c <= 0
		}
	}
	return false
}

func matchEq(v any, present bool, want any) bool {
	if want == nil {
		return !present || v == nil
	}
	if !present {
		return false
	}
	if list, ok := v.([]any); ok {
		for _, item := range list {
			if equal(item, want) {
				return true
			}
		}
		return false
	}
	return equal(v, want)
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two numbers or two strings. ok is false for any other pair.
func compare(a, b any) (int, bool) {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	if x, ok := a.(string); ok {
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
