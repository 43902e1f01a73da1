package medication

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
	g := api.Group("/medications")
	g.GET("", h.ListMedications)
	g.POST("", h.CreateMedication)
	g.GET("/:id", h.GetMedication)
	g.PUT("/:id", h.UpdateMedication)
	g.PUT("/existence/:id", h.UpdateExistence)
	g.DELETE("/:id", h.DeleteMedication)
}

func (h *Handler) ListMedications(c echo.Context) error {
	items, err := h.svc.ListMedications(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetMedication(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetMedication(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMedication(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.CreateMedication(c.Request().Context(), &m); err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.UpdateMedication(c.Request().Context(), id, &m); err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusOK, m)
}

type existenceRequest struct {
	Existence *int `json:"existence"`
}

func (h *Handler) UpdateExistence(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req existenceRequest
	if err := c.Bind(&req); err != nil || req.Existence == nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	m, err := h.svc.UpdateExistence(c.Request().Context(), id, *req.Existence)
	if err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedication(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.DeleteMedication(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusOK, m)
}
