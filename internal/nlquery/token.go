package nlquery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Token is one whitespace-delimited word of a query.
//
// Raw keeps the text exactly as typed and is what values are built from,
// since casing and punctuation matter for e-mails and dates. Lower is used to
// match symbolic comparators such as ">" and Clean to match field synonyms.
type Token struct {
	Raw   string
	Lower string
	Clean string
}

// Tokenize splits text on whitespace. Runs of comparison symbols (<, >, =)
// glued to a word are split off so "weight>80" reads like "weight > 80".
func Tokenize(text string) []Token {
	var tokens []Token
	for _, field := range strings.Fields(text) {
		for _, part := range splitSymbols(field) {
			tokens = append(tokens, Token{
				Raw:   part,
				Lower: strings.ToLower(part),
				Clean: Clean(part),
			})
		}
	}
	return tokens
}

// Clean folds accents, lowercases and drops every character outside
// [a-z0-9 ]. "Número" becomes "numero", "O+" becomes "o".
func Clean(s string) string {
	// transform chains keep internal buffers, so one is built per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cleanPhrase cleans every word of a configured phrase and rejoins them with
// single spaces. Words that clean to nothing are dropped.
func cleanPhrase(phrase string) string {
	var words []string
	for _, w := range strings.Fields(phrase) {
		if c := Clean(w); c != "" {
			words = append(words, c)
		}
	}
	return strings.Join(words, " ")
}

func isSymbol(r rune) bool {
	return r == '<' || r == '>' || r == '='
}

func splitSymbols(field string) []string {
	if !strings.ContainsAny(field, "<>=") {
		return []string{field}
	}

	var (
		parts []string
		start int
		prev  = -1 // 0: word, 1: symbol
	)
	for i, r := range field {
		class := 0
		if isSymbol(r) {
			class = 1
		}
		if prev != -1 && class != prev {
			parts = append(parts, field[start:i])
			start = i
		}
		prev = class
	}
	return append(parts, field[start:])
}

func joinRaw(tokens []Token) string {
	raw := make([]string, len(tokens))
	for i, t := range tokens {
		raw[i] = t.Raw
	}
	return strings.Join(raw, " ")
}

func joinClean(tokens []Token) string {
	clean := make([]string, len(tokens))
	for i, t := range tokens {
		clean[i] = t.Clean
	}
	return strings.Join(clean, " ")
}
