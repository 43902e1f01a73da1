package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient endpoints under api (normally /api/v1).
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patient", h.ListPatients)
	api.POST("/patient", h.CreatePatient)
	api.POST("/patient/query", h.QueryPatients)
	api.GET("/patient/:id", h.GetPatient)
	api.PUT("/patient/:id", h.UpdatePatient)
	api.DELETE("/patient/:id", h.DeletePatient)
	api.GET("/patient/:id/appointments", h.CompletedAppointments)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.UpdatePatient(c.Request().Context(), id, &p); err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Patient successfully deleted"})
}

func (h *Handler) CompletedAppointments(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	appts, err := h.svc.CompletedAppointments(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Patient")
	}
	if len(appts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, validate.Body("No completed appointments found"))
	}
	return c.JSON(http.StatusOK, appts)
}

type queryRequest struct {
	Query string `json:"query"`
}

// QueryPatients answers POST /patient/query {"query": "weight above 80"}.
func (h *Handler) QueryPatients(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	res, err := h.svc.QueryPatients(c.Request().Context(), middleware.SanitizeString(req.Query))
	if errors.Is(err, ErrNoMatches) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "No patients found matching the query."})
	}
	if err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusOK, res)
}
