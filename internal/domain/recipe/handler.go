package recipe

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

// RegisterRoutes mounts the recipe endpoints under g (normally /recipe-api/v1).
func (h *Handler) RegisterRoutes(g *echo.Group) {
	r := g.Group("/recipe")
	r.GET("", h.ListRecipes)
	r.POST("", h.CreateRecipe)
	r.GET("/medications", h.MedicationOptions)
	r.GET("/:appointmentId", h.AppointmentSummary)
}

func (h *Handler) ListRecipes(c echo.Context) error {
	items, err := h.svc.ListRecipes(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Recipe")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateRecipe(c echo.Context) error {
	var r Recipe
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.CreateRecipe(c.Request().Context(), &r); err != nil {
		return validate.HTTPError(err, "Appointment")
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) AppointmentSummary(c echo.Context) error {
	id, err := validate.ParamID(c, "appointmentId")
	if err != nil {
		return err
	}
	sum, err := h.svc.AppointmentSummary(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Appointment")
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) MedicationOptions(c echo.Context) error {
	opts, err := h.svc.MedicationOptions(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Medication")
	}
	return c.JSON(http.StatusOK, opts)
}
