package nlquery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T, opts ...Option) *Translator {
	t.Helper()
	tr, err := New(DefaultVocabulary(), opts...)
	require.NoError(t, err)
	return tr
}

func TestTranslate_UnrecognizedWords(t *testing.T) {
	tr := newDefault(t)
	f := tr.Translate("please find someone nice")
	assert.True(t, f.Empty())
	assert.Empty(t, f.Map())
}

func TestTranslate_EmptyInput(t *testing.T) {
	tr := newDefault(t)
	assert.True(t, tr.Translate("").Empty())
	assert.True(t, tr.Translate("   \t ").Empty())
}

func TestTranslate_FieldAlone(t *testing.T) {
	tr := newDefault(t)
	assert.True(t, tr.Translate("weight").Empty())
}

func TestTranslate_Comparison(t *testing.T) {
	tr := newDefault(t)
	f := tr.Translate("weight above 80")

	c, ok := f.Lookup("weight")
	require.True(t, ok)
	assert.Equal(t, OpGT, c.Op)
	assert.Equal(t, 80, c.Value)
	assert.Equal(t, map[string]any{"weight": map[string]any{"$gt": 80}}, f.Map())
}

func TestTranslate_ComparatorPhrases(t *testing.T) {
	tr := newDefault(t)
	tests := []struct {
		query string
		op    Operator
		value any
	}{
		{"height greater than 150", OpGT, 150},
		{"height more than 150", OpGT, 150},
		{"height less than 150", OpLT, 150},
		{"height less than or equal to 150", OpLTE, 150},
		{"height at least 150", OpGTE, 150},
		{"height at most 150.5", OpLTE, 150.5},
		{"height <= 150", OpLTE, 150},
		{"height<150", OpLT, 150},
		{"height is below 150", OpLT, 150},
		{"HEIGHT ABOVE 150", OpGT, 150},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, ok := tr.Translate(tt.query).Lookup("height")
			require.True(t, ok)
			assert.Equal(t, tt.op, c.Op)
			assert.Equal(t, tt.value, c.Value)
		})
	}
}

func TestTranslate_BloodTypePhraseMode(t *testing.T) {
	tr := newDefault(t)
	f := tr.Translate("blood type is O positive")
	assert.Equal(t, map[string]any{"bloodType": "O+"}, f.Map())
}

func TestTranslate_BloodTypeSingleTokenModeMultiWordTable(t *testing.T) {
	v := &Vocabulary{
		Fields: SynonymTable{
			{Field: "bloodType", Synonyms: []string{"blood type", "blood group"}},
		},
		Equality:       []string{"is"},
		BloodTypeField: "bloodType",
		BloodTypeSigns: []string{"positive", "negative", "+", "-"},
	}
	single, err := New(v, WithMatchMode(MatchSingleToken))
	require.NoError(t, err)
	assert.True(t, single.Translate("blood type is O positive").Empty())

	phrase, err := New(v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bloodType": "O+"}, phrase.Translate("blood type is O positive").Map())
}

func TestTranslate_SingleTokenModeReadsOneValueToken(t *testing.T) {
	tr := newDefault(t, WithMatchMode(MatchSingleToken))
	assert.Equal(t, map[string]any{"bloodType": "O"}, tr.Translate("blood type is O positive").Map())
	assert.Equal(t, map[string]any{"bloodType": "O+"}, tr.Translate("blood type is O+").Map())
}

func TestTranslate_PartialDateStaysText(t *testing.T) {
	tr := newDefault(t)
	assert.Equal(t, map[string]any{"name": "10:30"}, tr.Translate("name is 10:30").Map())
	assert.Equal(t, map[string]any{"name": "1/2"}, tr.Translate("name is 1/2").Map())
}

func TestTranslate_WithCoercer(t *testing.T) {
	keepText := ChainCoercer(Strategy{Name: "raw", Apply: func(raw, _ string) (any, bool) {
		return raw, true
	}})
	tr := newDefault(t, WithCoercer(keepText))
	assert.Equal(t, map[string]any{"weight": map[string]any{"$gt": "80"}}, tr.Translate("weight above 80").Map())
}

func TestTranslate_SingleTokenModeUsesWholeSynonyms(t *testing.T) {
	tr := newDefault(t, WithMatchMode(MatchSingleToken))
	assert.Equal(t, map[string]any{"name": "Smith"}, tr.Translate("last name is Smith").Map())

	phrase := newDefault(t)
	assert.Equal(t, map[string]any{"lastName": "Smith"}, phrase.Translate("last name is Smith").Map())
}

func TestTranslate_BloodTypeSigns(t *testing.T) {
	tr := newDefault(t)
	tests := map[string]string{
		"blood type is A negative": "A-",
		"blood type is ab +":       "AB+",
		"blood type is o+":         "O+",
		"blood group B positive":   "B+",
		"type is AB-":              "AB-",
	}
	for query, want := range tests {
		t.Run(query, func(t *testing.T) {
			c, ok := tr.Translate(query).Lookup("bloodType")
			require.True(t, ok)
			assert.Equal(t, want, c.Value)
		})
	}
}

func TestTranslate_NumericRuleIgnoresField(t *testing.T) {
	tr := newDefault(t)
	c, ok := tr.Translate("name is above 80").Lookup("name")
	require.True(t, ok)
	assert.Equal(t, OpGT, c.Op)
	assert.Equal(t, 80, c.Value)
}

func TestTranslate_LastOccurrenceWins(t *testing.T) {
	tr := newDefault(t)
	clauses := tr.Parse("weight above 80 weight below 90")
	require.Len(t, clauses, 2)

	f := tr.Translate("weight above 80 weight below 90")
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, map[string]any{"weight": map[string]any{"$lt": 90}}, f.Map())
}

func TestTranslate_FirstAppearanceOrder(t *testing.T) {
	tr := newDefault(t)
	f := tr.Translate("height above 150 weight below 90 height below 200")
	assert.Equal(t, []string{"height", "weight"}, f.Fields())
}

func TestTranslate_DanglingComparatorSkipsField(t *testing.T) {
	tr := newDefault(t)
	assert.True(t, tr.Translate("weight above").Empty())
	assert.True(t, tr.Translate("gender is").Empty())

	f := tr.Translate("weight above ?")
	assert.True(t, f.Empty())
}

func TestTranslate_OpenValueIsTerminal(t *testing.T) {
	tr := newDefault(t)
	f := tr.Translate("medical history asthma since childhood weight above 80")
	assert.Equal(t, []string{"medicalHistory"}, f.Fields())
	c, _ := f.Lookup("medicalHistory")
	assert.Equal(t, "asthma since childhood weight above 80", c.Value)
}

func TestTranslate_TrailingPunctuation(t *testing.T) {
	tr := newDefault(t)
	assert.Equal(t, map[string]any{"gender": "female"}, tr.Translate("gender is female?").Map())
}

func TestTranslate_LocaleMarkers(t *testing.T) {
	tr := newDefault(t)
	assert.Equal(t, map[string]any{"phone": 5551234}, tr.Translate("número de contacto igual a 5551234").Map())
	assert.Equal(t, map[string]any{"gender": "Male"}, tr.Translate("sex es Male").Map())
}

func TestTranslate_Dates(t *testing.T) {
	tr := newDefault(t)
	c, ok := tr.Translate("born is 1985-03-04").Lookup("birthDate")
	require.True(t, ok)
	assert.Equal(t, "1985-03-04T00:00:00", c.Value)

	c, ok = tr.Translate("date of birth above 2000-01-31").Lookup("birthDate")
	require.True(t, ok)
	assert.Equal(t, OpGT, c.Op)
	assert.Equal(t, "2000-01-31T00:00:00", c.Value)
}

func TestTranslate_Deterministic(t *testing.T) {
	tr := newDefault(t)
	assert.Equal(t, tr.Translate("gender is female"), tr.Translate("gender is female"))
}

func TestRender_RoundTrip(t *testing.T) {
	tr := newDefault(t)
	queries := []string{
		"gender is female",
		"weight above 80",
		"blood type is O positive",
		"weight at least 70.5 height below 180",
		"born is 1990-05-12",
		"weight above 80.0",
		"height below 190 medical history asthma since childhood",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			f := tr.Translate(q)
			require.False(t, f.Empty())

			text, err := tr.Render(f)
			require.NoError(t, err)
			assert.Equal(t, f, tr.Translate(text), "rendered as %q", text)
		})
	}
}

func TestRender_TwoOpenValues(t *testing.T) {
	tr := newDefault(t)
	f := Assemble([]Clause{
		{Field: "medicalHistory", Op: OpEQ, Value: "mild asthma"},
		{Field: "familyHistory", Op: OpEQ, Value: "heart disease"},
	})
	_, err := tr.Render(f)
	assert.ErrorIs(t, err, ErrNotRenderable)
}

func TestRender_UnknownField(t *testing.T) {
	tr := newDefault(t)
	_, err := tr.Render(Assemble([]Clause{{Field: "shoeSize", Op: OpEQ, Value: 42}}))
	assert.ErrorIs(t, err, ErrNotRenderable)
}

func TestTranslate_ConcurrentUse(t *testing.T) {
	tr := newDefault(t)
	want := tr.Translate("weight above 80 blood type is O positive")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := tr.Translate("weight above 80 blood type is O positive"); !assert.Equal(t, want, got) {
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTranslate_NeverPanics(t *testing.T) {
	tr := newDefault(t)
	inputs := []string{
		"is is is", "above", ">", "= = =", "weight weight weight",
		"blood", "blood type", "blood type is", "type +", "\x00\xff", "número",
		"weight >", "weight is >", "name is at", "at least at most",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { tr.Translate(in) }, in)
	}
}

func TestParseMatchMode(t *testing.T) {
	m, err := ParseMatchMode("single-token")
	require.NoError(t, err)
	assert.Equal(t, MatchSingleToken, m)

	m, err = ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchPhrase, m)

	_, err = ParseMatchMode("fuzzy")
	assert.Error(t, err)
}

func TestNew_RejectsNilVocabulary(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
