// Package validate collects field-level validation failures and maps service
// errors onto HTTP responses.
package validate

import (
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Errors maps a field name to the messages raised for it.
type Errors struct {
	Fields map[string][]string
}

// New returns an empty error set.
func New() *Errors {
	return &Errors{Fields: map[string][]string{}}
}

// Add records msg against field.
func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Check records msg against field when ok is false.
func (e *Errors) Check(ok bool, field, msg string) {
	if !ok {
		e.Add(field, msg)
	}
}

// Empty reports whether nothing was recorded.
func (e *Errors) Empty() bool { return len(e.Fields) == 0 }

// Err returns e as an error, or nil when nothing was recorded.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NotBlank reports whether s has a non-space character.
func NotBlank(s string) bool { return strings.TrimSpace(s) != "" }

// MaxLen reports whether s has at most n characters.
func MaxLen(s string, n int) bool { return utf8.RuneCountInString(s) <= n }

// MinLen reports whether s has at least n characters.
func MinLen(s string, n int) bool { return utf8.RuneCountInString(s) >= n }

// Email reports whether s is a bare address such as "ana@example.com".
func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

var alnum = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Alphanumeric reports whether s is non-empty and made of ASCII letters and
// digits only.
func Alphanumeric(s string) bool { return alnum.MatchString(s) }

// OneOf reports whether s is one of allowed.
func OneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// PastDate parses s with layout and reports whether it is valid and not after
// now.
func PastDate(s, layout string, now time.Time) (valid, notFuture bool) {
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return false, false
	}
	return true, !t.After(now)
}
