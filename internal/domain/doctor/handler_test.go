package doctor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

const doctorBody = `{"name":"Derek Shepherd","license":"k000000001","date_of_birth":"1970-01-01",
"phone_number":"5511223344","email":"derek@example.com",
"specialties":[{"specialty":"Neurosurgery","consultation_fee":1200}]}`

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(newTestService()), echo.New()
}

func doRequest(e *echo.Echo, method, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func TestHandler_CreateDoctor(t *testing.T) {
	h, e := newTestHandler()
	c, rec := doRequest(e, http.MethodPost, doctorBody, "")

	if err := h.CreateDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var d Doctor
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.ID != 1 || d.Specialties[0].ConsultationFee != 1200 {
		t.Errorf("unexpected doctor %+v", d)
	}
}

func TestHandler_CreateDoctor_Invalid(t *testing.T) {
	h, e := newTestHandler()
	c, _ := doRequest(e, http.MethodPost, `{"name":"Derek"}`, "")

	err := h.CreateDoctor(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_UpdateDoctor(t *testing.T) {
	h, e := newTestHandler()
	c, _ := doRequest(e, http.MethodPost, doctorBody, "")
	h.CreateDoctor(c)

	body := `{"name":"Derek Christopher Shepherd","phone_number":"5599887766","email":"ds@example.com","license":"k000000002"}`
	c, rec := doRequest(e, http.MethodPut, body, "1")
	if err := h.UpdateDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var d Doctor
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.Email != "ds@example.com" || len(d.Specialties) != 1 {
		t.Errorf("unexpected doctor %+v", d)
	}

	c, _ = doRequest(e, http.MethodPut, body, "5")
	if he, ok := h.UpdateDoctor(c).(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown doctor")
	}
}

func TestHandler_GetAndDeleteDoctor(t *testing.T) {
	h, e := newTestHandler()
	c, _ := doRequest(e, http.MethodPost, doctorBody, "")
	h.CreateDoctor(c)

	c, rec := doRequest(e, http.MethodGet, "", "1")
	if err := h.GetDoctor(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Derek Shepherd") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, rec = doRequest(e, http.MethodDelete, "", "1")
	if err := h.DeleteDoctor(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = doRequest(e, http.MethodGet, "", "1")
	if he, ok := h.GetDoctor(c).(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete")
	}

	c, rec = doRequest(e, http.MethodGet, "", "")
	if err := h.ListDoctors(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}
