package appointment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/validate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medicalappointments")
	g.GET("", h.ListAppointments)
	g.POST("", h.CreateAppointment)
	g.GET("/patients", h.PatientOptions)
	g.GET("/doctors", h.DoctorOptions)
	g.GET("/:id", h.GetAppointment)
	g.PUT("/:id", h.UpdateAppointment)
	g.DELETE("/:id", h.DeleteAppointment)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	items, err := h.svc.ListAppointments(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Medical Appointment")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Medical Appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return validate.HTTPError(err, "Medical Appointment")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	updated, err := h.svc.UpdateAppointment(c.Request().Context(), id, &a)
	if err != nil {
		return validate.HTTPError(err, "Medical Appointment")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.DeleteAppointment(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Medical Appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) PatientOptions(c echo.Context) error {
	opts, err := h.svc.PatientOptions(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Patient")
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) DoctorOptions(c echo.Context) error {
	opts, err := h.svc.DoctorOptions(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Doctor")
	}
	return c.JSON(http.StatusOK, opts)
}
