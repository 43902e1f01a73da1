package validate

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/docstore"
)

func TestErrors_CollectsPerField(t *testing.T) {
	v := New()
	if v.Err() != nil {
		t.Fatal("expected nil error for empty set")
	}
	v.Check(false, "name", "Name must be a non-empty string.")
	v.Check(true, "email", "never recorded")
	v.Add("name", "Name must not exceed 50 characters.")

	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(v.Fields["name"]); got != 2 {
		t.Errorf("expected 2 messages for name, got %d", got)
	}
	if _, ok := v.Fields["email"]; ok {
		t.Error("email should have no messages")
	}
	want := "validation failed: name: Name must be a non-empty string.; Name must not exceed 50 characters."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrors_ZeroValueAdd(t *testing.T) {
	var v Errors
	v.Add("rfc", "bad")
	if v.Empty() {
		t.Error("expected recorded message")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"blank", NotBlank("   "), false},
		{"not blank", NotBlank(" a "), true},
		{"max len counts runes", MaxLen("ñññ", 3), true},
		{"max len exceeded", MaxLen("abcd", 3), false},
		{"min len", MinLen("abcde", 5), true},
		{"email ok", Email("ana@example.com"), true},
		{"email display name rejected", Email("Ana <ana@example.com>"), false},
		{"email missing at", Email("ana.example.com"), false},
		{"alnum ok", Alphanumeric("ABC123"), true},
		{"alnum space", Alphanumeric("ABC 123"), false},
		{"alnum empty", Alphanumeric(""), false},
		{"one of", OneOf("O+", "A+", "O+"), true},
		{"not one of", OneOf("o+", "A+", "O+"), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestPastDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	valid, past := PastDate("1990-05-12", "2006-01-02", now)
	if !valid || !past {
		t.Errorf("expected valid past date, got valid=%v past=%v", valid, past)
	}
	valid, past = PastDate("2030-01-01", "2006-01-02", now)
	if !valid || past {
		t.Errorf("expected valid future date, got valid=%v past=%v", valid, past)
	}
	if valid, _ := PastDate("12/05/1990", "2006-01-02", now); valid {
		t.Error("expected invalid layout")
	}
}

func TestHTTPError(t *testing.T) {
	verr := New()
	verr.Add("bloodType", "Blood type must be one of: A+, A-, B+, B-, AB+, AB-, O+, O-.")

	tests := []struct {
		name   string
		err    error
		status int
		body   any
	}{
		{"validation", fmt.Errorf("create patient: %w", verr), http.StatusBadRequest, verr.Fields},
		{"not found", fmt.Errorf("get: %w", docstore.ErrNotFound), http.StatusNotFound, "Patient not found"},
		{"bad request", BadRequest("Query cannot be empty"), http.StatusBadRequest, "Query cannot be empty"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := HTTPError(tt.err, "Patient")
			if he.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, he.Code)
			}
			body, ok := he.Message.(map[string]any)
			if !ok {
				t.Fatalf("expected map body, got %T", he.Message)
			}
			if fmt.Sprint(body["error"]) != fmt.Sprint(tt.body) {
				t.Errorf("error body = %v, want %v", body["error"], tt.body)
			}
		})
	}
}

func TestBadRequestMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("query: %w", BadRequest("too long"))
	if !errors.Is(err, ErrBadRequest) {
		t.Error("expected errors.Is to match ErrBadRequest")
	}
}

func TestParamID(t *testing.T) {
	e := echo.New()
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tt.value)
		got, err := ParamID(c, "id")
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParamID(%q) = %d, %v; want %d", tt.value, got, err, tt.want)
		}
		if !tt.ok {
			he, isHTTP := err.(*echo.HTTPError)
			if !isHTTP || he.Code != http.StatusBadRequest {
				t.Errorf("ParamID(%q): expected 400 HTTPError, got %v", tt.value, err)
			}
		}
	}
}
