package docstore

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Dialect selects the SQL flavour CompileWhere emits.
type Dialect int

const (
	// Postgres targets a jsonb "data" column with $n placeholders.
	Postgres Dialect = iota
	// SQLite targets a JSON text "data" column with ? placeholders.
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CompileWhere turns f into a boolean SQL expression over a table with an
// integer "id" column and a JSON "data" column. args are the arguments the
// caller has already bound; placeholders continue after them. The
// expression agrees with Match for every supported filter.
func CompileWhere(d Dialect, f Filter, args []any) (string, []any, error) {
	if err := ValidateFilter(f); err != nil {
		return "", nil, err
	}

	c := &compiler{dialect: d, args: args}
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		if field != IDField && !fieldPattern.MatchString(field) {
			return "", nil, fmt.Errorf("filter: invalid field name %q", field)
		}

		cond := f[field]
		ops, isOps := cond.(map[string]any)
		if !isOps {
			ops = map[string]any{"$eq": cond}
		}
		opNames := make([]string, 0, len(ops))
		for op := range ops {
			opNames = append(opNames, op)
		}
		sort.Strings(opNames)

		for _, op := range opNames {
			expr, err := c.condition(field, op, ops[op])
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, expr)
		}
	}
	if len(parts) == 0 {
		return "TRUE", c.args, nil
	}
	return strings.Join(parts, " AND "), c.args, nil
}

type compiler struct {
	dialect Dialect
	args    []any
}

func (c *compiler) arg(v any) string {
	c.args = append(c.args, v)
	if c.dialect == Postgres {
		return "$" + strconv.Itoa(len(c.args))
	}
	return "?"
}

func (c *compiler) condition(field, op string, v any) (string, error) {
	switch op {
	case "$eq":
		return c.eq(field, v)
	case "$ne":
		expr, err := c.eq(field, v)
		if err != nil {
			return "", err
		}
		return "NOT " + expr, nil
	case "$in":
		list := v.([]any)
		if len(list) == 0 {
			return "FALSE", nil
		}
		alts := make([]string, 0, len(list))
		for _, item := range list {
			expr, err := c.eq(field, item)
			if err != nil {
				return "", err
			}
			alts = append(alts, expr)
		}
		return "(" + strings.Join(alts, " OR ") + ")", nil
	case "$gt":
		return c.compare(field, ">", v)
	case "$gte":
		return c.compare(field, ">=", v)
	case "$lt":
		return c.compare(field, "<", v)
	case "$lte":
		return c.compare(field, "<=", v)
	}
	return "", fmt.Errorf("filter: unsupported operator %q", op)
}

type valueKind int

const (
	kindNull valueKind = iota
	kindNumber
	kindString
	kindBool
)

func kindOf(v any) (valueKind, error) {
	if v == nil {
		return kindNull, nil
	}
	if _, ok := toFloat(v); ok {
		return kindNumber, nil
	}
	switch v.(type) {
	case string:
		return kindString, nil
	case bool:
		return kindBool, nil
	}
	return 0, fmt.Errorf("filter: unsupported value of type %T", v)
}

func (c *compiler) eq(field string, v any) (string, error) {
	kind, err := kindOf(v)
	if err != nil {
		return "", err
	}
	if field == IDField {
		if kind != kindNumber {
			return "FALSE", nil
		}
		return "id = " + c.arg(v), nil
	}
	if c.dialect == Postgres {
		return c.pgEq(field, kind, v), nil
	}
	return c.sqliteEq(field, kind, v), nil
}

func (c *compiler) compare(field, op string, v any) (string, error) {
	kind, err := kindOf(v)
	if err != nil {
		return "", err
	}
	if kind != kindNumber && kind != kindString {
		return "FALSE", nil
	}
	if field == IDField {
		if kind != kindNumber {
			return "FALSE", nil
		}
		return "id " + op + " " + c.arg(v), nil
	}
	if c.dialect == Postgres {
		return c.pgCompare(field, op, kind, v), nil
	}
	return c.sqliteCompare(field, op, kind, v), nil
}

var pgCasts = map[valueKind]string{
	kindNumber: "numeric",
	kindString: "text",
	kindBool:   "boolean",
}

func (c *compiler) pgValue(field string) string {
	return "data->(" + c.arg(field) + "::text)"
}

func (c *compiler) pgEq(field string, kind valueKind, v any) string {
	if kind == kindNull {
		return "(" + c.pgValue(field) + " IS NULL OR " + c.pgValue(field) + " = 'null'::jsonb)"
	}
	cast := pgCasts[kind]
	return fmt.Sprintf("COALESCE(%s = to_jsonb(%s::%s) OR (jsonb_typeof(%s) = 'array' AND %s @> jsonb_build_array(%s::%s)), FALSE)",
		c.pgValue(field), c.arg(v), cast,
		c.pgValue(field), c.pgValue(field), c.arg(v), cast)
}

func (c *compiler) pgCompare(field, op string, kind valueKind, v any) string {
	if kind == kindNumber {
		return fmt.Sprintf("COALESCE(CASE WHEN jsonb_typeof(%s) = 'number' THEN (data->>(%s::text))::numeric %s %s::numeric END, FALSE)",
			c.pgValue(field), c.arg(field), op, c.arg(v))
	}
	return fmt.Sprintf(`COALESCE(CASE WHEN jsonb_typeof(%s) = 'string' THEN (data->>(%s::text)) COLLATE "C" %s %s::text END, FALSE)`,
		c.pgValue(field), c.arg(field), op, c.arg(v))
}

func jsonPath(field string) string {
	return "$." + field
}

func (c *compiler) sqliteEq(field string, kind valueKind, v any) string {
	switch kind {
	case kindNull:
		return fmt.Sprintf("(json_type(data, %s) IS NULL OR json_type(data, %s) = 'null')",
			c.arg(jsonPath(field)), c.arg(jsonPath(field)))
	case kindBool:
		want := "false"
		if v.(bool) {
			want = "true"
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(data, %s) WHERE type = '%s')", c.arg(jsonPath(field)), want)
	case kindNumber:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(data, %s) WHERE type IN ('integer', 'real') AND value = %s)",
			c.arg(jsonPath(field)), c.arg(v))
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(data, %s) WHERE type = 'text' AND value = %s)",
		c.arg(jsonPath(field)), c.arg(v))
}

func (c *compiler) sqliteCompare(field, op string, kind valueKind, v any) string {
	types := "'text'"
	if kind == kindNumber {
		types = "'integer', 'real'"
	}
	return fmt.Sprintf("COALESCE(CASE WHEN json_type(data, %s) IN (%s) THEN json_extract(data, %s) %s %s END, 0)",
		c.arg(jsonPath(field)), types, c.arg(jsonPath(field)), op, c.arg(v))
}
