package payment

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

// RegisterRoutes mounts the payment endpoints. POST /payments/add is kept
// alongside POST /payments for existing clients.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/payments")
	g.GET("", h.ListPayments)
	g.POST("", h.CreatePayment)
	g.POST("/add", h.CreatePayment)
	g.GET("/pending", h.PendingOrders)
	g.DELETE("/:id", h.DeletePayment)
}

func (h *Handler) ListPayments(c echo.Context) error {
	items, err := h.svc.ListPayments(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Payment")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreatePayment(c echo.Context) error {
	var p Payment
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Body("Invalid data"))
	}
	if err := h.svc.CreatePayment(c.Request().Context(), &p); err != nil {
		return validate.HTTPError(err, "Payment")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) DeletePayment(c echo.Context) error {
	id, err := validate.ParamID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.DeletePayment(c.Request().Context(), id)
	if err != nil {
		return validate.HTTPError(err, "Payment")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) PendingOrders(c echo.Context) error {
	orders, err := h.svc.PendingOrders(c.Request().Context())
	if err != nil {
		return validate.HTTPError(err, "Order")
	}
	return c.JSON(http.StatusOK, orders)
}
