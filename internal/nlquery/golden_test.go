package nlquery

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

var goldenQueries = []string{
	"weight above 80",
	"blood type is O positive",
	"gender is female",
	"name is above 80",
	"weight at least 70.5 height below 180",
	"born is 1990-05-12",
	"last name is García",
	"número de contacto es 5551234",
	"weight > 80 and weight < 90",
	"weight>=60",
	"sugar level at most 110",
	"patients with blood group AB -",
	"show me everything",
	"weight above",
	"",
}

func TestTranslateGolden(t *testing.T) {
	tr, err := New(DefaultVocabulary())
	require.NoError(t, err)

	var buf bytes.Buffer
	for _, q := range goldenQueries {
		fmt.Fprintf(&buf, "%q => %s\n", q, tr.Translate(q))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "phrase_mode", buf.Bytes())
}
