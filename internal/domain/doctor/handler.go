package doctor

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
	g := api.Group("/doctors")
	g.GET("", h.ListDoctors)
	g.POST("", h.CreateDoctor)
	g.GET("/:id", h.GetDoctor)
	g.PUT("/:id", h.UpdateDoctor)
	g.DELETE("/:id", h.DeleteDoctor)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Doctor")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Doctor")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return validate.HTTPError(err, "Doctor")
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	var u ContactUpdate
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	d, err := h.svc.UpdateContact(c.Request().Context(), id, &u)
	if err != nil {
		return validate.HTTPError(err, "Doctor")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.DeleteDoctor(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Doctor")
	}
	return c.JSON(http.StatusOK, d)
}
