package nlquery

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// DateLayout is the ISO-8601 form date values are normalized to.
const DateLayout = "2006-01-02T15:04:05"

var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Strategy turns a raw value into a typed one. ok=false passes the value on
// to the next strategy.
type Strategy struct {
	Name  string
	Apply func(raw, field string) (value any, ok bool)
}

// Coercer runs an ordered list of strategies; the first one that accepts the
// value wins. Raw text is returned when none does.
type Coercer struct {
	strategies []Strategy
}

// NewCoercer builds the default chain: blood type, number, date, text.
func NewCoercer(bloodTypeField string) Coercer {
	return ChainCoercer(DefaultStrategies(bloodTypeField)...)
}

// DefaultStrategies returns the default chain so callers can extend or
// reorder it before passing it to ChainCoercer.
func DefaultStrategies(bloodTypeField string) []Strategy {
	return []Strategy{
		{Name: "blood-type", Apply: bloodTypeStrategy(bloodTypeField)},
		{Name: "number", Apply: coerceNumber},
		{Name: "date", Apply: coerceDate},
		{Name: "text", Apply: coerceText},
	}
}

// ChainCoercer builds a Coercer that tries strategies in the given order.
func ChainCoercer(strategies ...Strategy) Coercer {
	return Coercer{strategies: append([]Strategy(nil), strategies...)}
}

// Strategies returns the strategy names in evaluation order.
func (c Coercer) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name
	}
	return names
}

// Coerce never fails.
func (c Coercer) Coerce(raw, field string) any {
	for _, s := range c.strategies {
		if v, ok := s.Apply(raw, field); ok {
			return v
		}
	}
	return strings.TrimSpace(raw)
}

func bloodTypeStrategy(bloodTypeField string) func(raw, field string) (any, bool) {
	return func(raw, field string) (any, bool) {
		if bloodTypeField == "" || field != bloodTypeField {
			return nil, false
		}
		return NormalizeBloodType(raw), true
	}
}

// NormalizeBloodType uppercases v, spells the first POSITIVE/NEGATIVE as a
// sign and removes whitespace: "o positive" -> "O+", "ab -" -> "AB-".
func NormalizeBloodType(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	switch {
	case strings.Contains(v, "POSITIVE"):
		v = strings.Replace(v, "POSITIVE", "+", 1)
	case strings.Contains(v, "NEGATIVE"):
		v = strings.Replace(v, "NEGATIVE", "-", 1)
	}
	return strings.Join(strings.Fields(v), "")
}

func coerceNumber(raw, _ string) (any, bool) {
	s := strings.TrimSpace(raw)
	if !numberPattern.MatchString(s) {
		return nil, false
	}
	if !strings.Contains(s, ".") {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// dateWords are the only letter runs a value may contain to be read as a
// date. Without this, free text such as "asthma since 2010" would be handed
// to the date parser.
var dateWords = map[string]bool{
	"jan": true, "january": true, "feb": true, "february": true, "mar": true, "march": true,
	"apr": true, "april": true, "may": true, "jun": true, "june": true, "jul": true, "july": true,
	"aug": true, "august": true, "sep": true, "sept": true, "september": true, "oct": true,
	"october": true, "nov": true, "november": true, "dec": true, "december": true,
	"mon": true, "monday": true, "tue": true, "tuesday": true, "wed": true, "wednesday": true,
	"thu": true, "thursday": true, "fri": true, "friday": true, "sat": true, "saturday": true,
	"sun": true, "sunday": true,
	"am": true, "pm": true, "utc": true, "gmt": true, "t": true, "z": true,
	"st": true, "nd": true, "rd": true, "th": true, "of": true,
}

func looksLikeDate(s string) bool {
	if !strings.ContainsAny(s, "0123456789") {
		return false
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if !dateWords[w] {
			return false
		}
	}
	return true
}

func coerceDate(raw, _ string) (any, bool) {
	s := strings.TrimSpace(raw)
	if !looksLikeDate(s) {
		return nil, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil, false
	}
	// Clock times and partial dates ("10:30", "1/2") parse with year 0.
	if t.Year() == 0 {
		return nil, false
	}
	return t.Format(DateLayout), true
}

func coerceText(raw, _ string) (any, bool) {
	return strings.TrimSpace(raw), true
}
