// Package nlquery translates free-text patient searches such as
// "weight above 80" or "blood type is O positive" into structured filters.
//
// A Translator is built once from a Vocabulary and is immutable afterwards,
// so a single instance can serve concurrent requests. Translation never
// fails: text it cannot make sense of yields an empty Filter.
package nlquery

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MatchMode selects how field synonyms are recognized.
type MatchMode int

const (
	// MatchPhrase tries windows of up to three tokens, longest first, so
	// multi-word synonyms like "blood type" resolve.
	MatchPhrase MatchMode = iota
	// MatchSingleToken compares one token at a time against whole synonyms.
	// Multi-word synonyms never match in this mode.
	MatchSingleToken
)

const maxPhraseWords = 3

func (m MatchMode) String() string {
	switch m {
	case MatchPhrase:
		return "phrase"
	case MatchSingleToken:
		return "single-token"
	}
	return fmt.Sprintf("MatchMode(%d)", int(m))
}

// ParseMatchMode parses "phrase" or "single-token".
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "phrase":
		return MatchPhrase, nil
	case "single-token", "single_token", "token":
		return MatchSingleToken, nil
	}
	return 0, fmt.Errorf("unknown match mode %q", s)
}

// Option configures a Translator.
type Option func(*Translator)

// WithMatchMode overrides the default MatchPhrase mode.
func WithMatchMode(m MatchMode) Option {
	return func(t *Translator) { t.mode = m }
}

// WithCoercer replaces the default coercion chain.
func WithCoercer(c Coercer) Option {
	return func(t *Translator) { t.coercer = c }
}

// ErrNotRenderable is returned by Render for filters that have no textual
// form the translator would read back identically.
var ErrNotRenderable = errors.New("filter cannot be rendered as a query")

type lexPhrase struct {
	words []string
	op    Operator
}

// Translator turns query text into a Filter.
type Translator struct {
	mode      MatchMode
	coercer   Coercer
	fields    map[string]string // cleaned synonym -> field
	synonyms  map[string][]string
	maxWords  int
	compars   []lexPhrase // longest first
	equality  []lexPhrase // longest first
	markers   []string    // equality markers in configured order
	bloodType string
	signs     map[string]bool
}

// New compiles v into a Translator. v is validated and copied; later changes
// to it do not affect the Translator.
func New(v *Vocabulary, opts ...Option) (*Translator, error) {
	if v == nil {
		return nil, errors.New("nlquery: nil vocabulary")
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	t := &Translator{
		mode:      MatchPhrase,
		coercer:   NewCoercer(v.BloodTypeField),
		fields:    make(map[string]string),
		synonyms:  make(map[string][]string),
		bloodType: v.BloodTypeField,
		signs:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.mode != MatchPhrase && t.mode != MatchSingleToken {
		return nil, fmt.Errorf("nlquery: unknown match mode %v", t.mode)
	}

	for _, fs := range v.Fields {
		for _, syn := range fs.Synonyms {
			key := cleanPhrase(syn)
			if _, dup := t.fields[key]; dup {
				continue
			}
			t.fields[key] = fs.Field
			t.synonyms[fs.Field] = append(t.synonyms[fs.Field], key)
			if n := len(strings.Fields(key)); n > t.maxWords {
				t.maxWords = n
			}
		}
	}
	if t.maxWords > maxPhraseWords {
		t.maxWords = maxPhraseWords
	}

	for p, op := range v.Comparators {
		t.compars = append(t.compars, lexPhrase{words: strings.Fields(strings.ToLower(p)), op: op})
	}
	sortPhrases(t.compars)

	for _, m := range v.Equality {
		t.equality = append(t.equality, lexPhrase{words: strings.Fields(strings.ToLower(m)), op: OpEQ})
		t.markers = append(t.markers, strings.ToLower(strings.Join(strings.Fields(m), " ")))
	}
	sortPhrases(t.equality)

	for _, s := range v.BloodTypeSigns {
		t.signs[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return t, nil
}

// sortPhrases orders phrases longest first, then alphabetically, so that
// "less than or equal to" is tried before "less than".
func sortPhrases(p []lexPhrase) {
	sort.SliceStable(p, func(i, j int) bool {
		if len(p[i].words) != len(p[j].words) {
			return len(p[i].words) > len(p[j].words)
		}
		return strings.Join(p[i].words, " ") < strings.Join(p[j].words, " ")
	})
}

// Mode returns the field matching mode.
func (t *Translator) Mode() MatchMode { return t.mode }

// Translate parses text and collapses the result into a Filter.
func (t *Translator) Translate(text string) Filter {
	return Assemble(t.Parse(text))
}

type scanState int

const (
	seekingField scanState = iota
	afterField
	afterComparator
	done
)

// Parse returns every clause recognized in text, in order, before collapsing.
// A field may appear more than once.
func (t *Translator) Parse(text string) []Clause {
	tokens := Tokenize(text)

	var (
		clauses []Clause
		state   = seekingField
		field   string
		op      Operator
		i       int
	)
	for state != done {
		switch state {
		case seekingField:
			if i >= len(tokens) {
				state = done
				continue
			}
			f, width, ok := t.resolveField(tokens, i)
			if !ok {
				i++
				continue
			}
			field = f
			i += width
			state = afterField

		case afterField:
			if o, width, ok := matchLexicon(t.compars, tokens, i); ok {
				op = o
				i += width
				state = afterComparator
				continue
			}
			if _, width, ok := matchLexicon(t.equality, tokens, i); ok {
				i += width
				op = OpEQ
				if o, w, ok := matchLexicon(t.compars, tokens, i); ok {
					op = o
					i += w
				}
				state = afterComparator
				continue
			}
			// Bare field followed by text: the rest of the query is the value.
			if i < len(tokens) {
				clauses = t.emit(clauses, field, OpEQ, joinRaw(tokens[i:]))
			}
			state = done

		case afterComparator:
			if i >= len(tokens) {
				state = seekingField
				continue
			}
			width := t.valueWidth(field, tokens, i)
			clauses = t.emit(clauses, field, op, joinRaw(tokens[i:i+width]))
			i += width
			state = seekingField
		}
	}
	return clauses
}

func (t *Translator) emit(clauses []Clause, field string, op Operator, raw string) []Clause {
	raw = strings.TrimRight(strings.TrimSpace(raw), ",;:!?")
	if raw == "" {
		return clauses
	}
	return append(clauses, Clause{Field: field, Op: op, Value: t.coercer.Coerce(raw, field)})
}

func (t *Translator) resolveField(tokens []Token, i int) (string, int, bool) {
	width := 1
	if t.mode == MatchPhrase {
		width = min(t.maxWords, len(tokens)-i)
	}
	for w := width; w >= 1; w-- {
		if f, ok := t.fields[joinClean(tokens[i:i+w])]; ok {
			return f, w, true
		}
	}
	return "", 0, false
}

// valueWidth is 1 except for blood types in phrase mode, where "O positive"
// and "AB -" are read as one value.
func (t *Translator) valueWidth(field string, tokens []Token, i int) int {
	if t.mode == MatchPhrase && field == t.bloodType && i+1 < len(tokens) && t.signs[tokens[i+1].Lower] {
		return 2
	}
	return 1
}

// matchLexicon compares each phrase word with a token's lowercase form, so
// symbols like ">" match, or with its cleaned form, so "above," and "Igual"
// match.
func matchLexicon(phrases []lexPhrase, tokens []Token, i int) (Operator, int, bool) {
	for _, p := range phrases {
		if i+len(p.words) > len(tokens) {
			continue
		}
		matched := true
		for k, w := range p.words {
			tok := tokens[i+k]
			if w != tok.Lower && (tok.Clean == "" || w != tok.Clean) {
				matched = false
				break
			}
		}
		if matched {
			return p.op, len(p.words), true
		}
	}
	return "", 0, false
}

// Render writes f back as query text that Translate reads as the same
// filter. Equality values containing spaces use the open form ("name John
// Smith") and must come last, so at most one such clause is renderable.
func (t *Translator) Render(f Filter) (string, error) {
	var (
		parts []string
		open  string
	)
	for _, c := range f.clauses {
		syn, ok := t.renderField(c.Field)
		if !ok {
			return "", fmt.Errorf("%w: no usable synonym for %q", ErrNotRenderable, c.Field)
		}
		value := formatValue(c.Value)
		if value == "" {
			return "", fmt.Errorf("%w: empty value for %q", ErrNotRenderable, c.Field)
		}
		multi := len(strings.Fields(value)) > 1

		if c.Op == OpEQ && multi {
			if open != "" {
				return "", fmt.Errorf("%w: more than one multi-word value", ErrNotRenderable)
			}
			open = syn + " " + value
			continue
		}
		if multi {
			return "", fmt.Errorf("%w: multi-word value for %q", ErrNotRenderable, c.Field)
		}

		word, ok := t.renderOperator(c.Op)
		if !ok {
			return "", fmt.Errorf("%w: no phrase for operator %s", ErrNotRenderable, c.Op)
		}
		parts = append(parts, syn+" "+word+" "+value)
	}
	if open != "" {
		parts = append(parts, open)
	}
	return strings.Join(parts, " "), nil
}

func (t *Translator) renderField(field string) (string, bool) {
	for _, syn := range t.synonyms[field] {
		if t.mode == MatchSingleToken && strings.Contains(syn, " ") {
			continue
		}
		return syn, true
	}
	return "", false
}

func (t *Translator) renderOperator(op Operator) (string, bool) {
	if op == OpEQ {
		if len(t.markers) == 0 {
			return "", false
		}
		return t.markers[0], true
	}
	// Shortest phrase wins; compars is sorted longest first.
	for i := len(t.compars) - 1; i >= 0; i-- {
		if t.compars[i].op == op {
			return strings.Join(t.compars[i].words, " "), true
		}
	}
	return "", false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return fmt.Sprint(v)
}
