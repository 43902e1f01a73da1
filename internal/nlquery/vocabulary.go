package nlquery

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// FieldSynonyms lists the phrases that name one canonical field.
type FieldSynonyms struct {
	Field    string   `yaml:"field"`
	Synonyms []string `yaml:"synonyms"`
}

// SynonymTable maps canonical fields to the phrases users type for them. It
// is a list rather than a map so that resolution order is deterministic.
type SynonymTable []FieldSynonyms

// Fields returns the canonical field names in table order.
func (t SynonymTable) Fields() []string {
	out := make([]string, len(t))
	for i, fs := range t {
		out[i] = fs.Field
	}
	return out
}

// Has reports whether field is a canonical field of the table.
func (t SynonymTable) Has(field string) bool {
	for _, fs := range t {
		if fs.Field == field {
			return true
		}
	}
	return false
}

// ComparatorLexicon maps comparator phrases ("at least", ">") to operators.
type ComparatorLexicon map[string]Operator

// Vocabulary is the data a Translator is built from.
type Vocabulary struct {
	Fields         SynonymTable      `yaml:"fields"`
	Comparators    ComparatorLexicon `yaml:"comparators"`
	Equality       []string          `yaml:"equality"`
	BloodTypeField string            `yaml:"blood_type_field,omitempty"`
	BloodTypeSigns []string          `yaml:"blood_type_signs,omitempty"`
}

// DefaultVocabulary returns a fresh copy of the built-in patient vocabulary.
// It panics if the embedded file is invalid, which the package tests rule out.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("nlquery: embedded vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads and validates a YAML vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// ParseVocabulary decodes and validates a YAML vocabulary. Unknown keys are
// rejected so that typos do not silently drop configuration.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var v Vocabulary
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate checks the vocabulary for configuration errors: empty or repeated
// fields, phrases claimed by two fields and unusable comparator phrases.
func (v *Vocabulary) Validate() error {
	var errs []error

	if len(v.Fields) == 0 {
		errs = append(errs, errors.New("fields: at least one field is required"))
	}

	seenField := make(map[string]bool)
	owner := make(map[string]string)
	for i, fs := range v.Fields {
		if strings.TrimSpace(fs.Field) == "" {
			errs = append(errs, fmt.Errorf("fields[%d]: field name is required", i))
			continue
		}
		if seenField[fs.Field] {
			errs = append(errs, fmt.Errorf("fields[%d]: field %q listed twice", i, fs.Field))
		}
		seenField[fs.Field] = true

		if len(fs.Synonyms) == 0 {
			errs = append(errs, fmt.Errorf("field %q: at least one synonym is required", fs.Field))
		}
		for _, syn := range fs.Synonyms {
			key := cleanPhrase(syn)
			if key == "" {
				errs = append(errs, fmt.Errorf("field %q: synonym %q has no letters or digits", fs.Field, syn))
				continue
			}
			if prev, ok := owner[key]; ok && prev != fs.Field {
				errs = append(errs, fmt.Errorf("synonym %q maps to both %q and %q", syn, prev, fs.Field))
				continue
			}
			owner[key] = fs.Field
		}
	}

	phrases := make([]string, 0, len(v.Comparators))
	for p := range v.Comparators {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	for _, p := range phrases {
		if len(strings.Fields(p)) == 0 {
			errs = append(errs, errors.New("comparators: empty phrase"))
			continue
		}
		if !v.Comparators[p].Valid() {
			errs = append(errs, fmt.Errorf("comparator %q: invalid operator %q", p, v.Comparators[p]))
		}
	}
	for i, m := range v.Equality {
		if len(strings.Fields(m)) == 0 {
			errs = append(errs, fmt.Errorf("equality[%d]: empty marker", i))
		}
	}

	if v.BloodTypeField != "" && !v.Fields.Has(v.BloodTypeField) {
		errs = append(errs, fmt.Errorf("blood_type_field %q is not a configured field", v.BloodTypeField))
	}

	return errors.Join(errs...)
}
