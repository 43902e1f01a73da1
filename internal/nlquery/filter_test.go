package nlquery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	f := Assemble([]Clause{
		{Field: "weight", Op: OpGT, Value: 80},
		{Field: "gender", Op: OpEQ, Value: "female"},
		{Field: "weight", Op: OpLTE, Value: 95.5},
	})

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"weight", "gender"}, f.Fields())
	assert.Equal(t, "{weight LTE 95.5, gender EQ female}", f.String())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weight":{"$lte":95.5},"gender":"female"}`, string(data))
}

func TestFilterClausesIsCopy(t *testing.T) {
	f := Assemble([]Clause{{Field: "gender", Op: OpEQ, Value: "male"}})
	cs := f.Clauses()
	cs[0].Value = "female"

	c, _ := f.Lookup("gender")
	assert.Equal(t, "male", c.Value)
}

func TestZeroFilter(t *testing.T) {
	var f Filter
	assert.True(t, f.Empty())
	assert.Equal(t, "{}", f.String())
	assert.Equal(t, map[string]any{}, f.Map())

	_, ok := f.Lookup("weight")
	assert.False(t, ok)
}
