package handlers

import (
	"log"

	"tweeps/internal/middleware"
	"tweeps/internal/models"
	"tweeps/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *services.OrderService
	validate     *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the order routes. All require authentication;
// listing every order and advancing fulfillment statuses are admin actions
// enforced in the service.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Get("/:id/total", h.HandleCalculateTotal)
	orderRoutes.Patch("/:id/status", h.HandleUpdateStatus)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// CheckoutRequest represents the request body for checkout.
type CheckoutRequest struct {
	Notes           string `json:"notes" validate:"omitempty,max=500"`
	DeliveryAddress string `json:"delivery_address" validate:"omitempty,max=100"`
}

// HandleCheckout converts the authenticated user's cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing checkout request body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
		if err := h.validate.Struct(req); err != nil {
			return respondValidationErrors(c, err)
		}
	}

	order, err := h.orderService.Checkout(middleware.CurrentUser(c), req.Notes, req.DeliveryAddress)
	if err != nil {
		return respondError(c, "Could not place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListOrders returns the user's own orders, or every order for admins
// with ?all=true.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var (
		orders []models.Order
		err    error
	)
	if c.QueryBool("all", false) {
		orders, err = h.orderService.ListAllOrders(user)
	} else {
		orders, err = h.orderService.ListOrders(user)
	}
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrder retrieves a single order, owner or admin only.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCalculateTotal returns the reconciliation total recomputed from
// current menu prices alongside the frozen stored total.
func (h *OrderHandler) HandleCalculateTotal(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	orderID := c.Params("id")

	order, err := h.orderService.GetOrder(user, orderID)
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	current, err := h.orderService.CalculateTotal(user, orderID)
	if err != nil {
		return respondError(c, "Could not recompute order total", err)
	}
	return c.JSON(fiber.Map{
		"order_id":      order.ID,
		"stored_total":  order.Total,
		"current_total": current,
	})
}

// UpdateStatusRequest represents the request body for a status update.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateStatus advances an order through its lifecycle.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	order, err := h.orderService.UpdateStatus(middleware.CurrentUser(c), c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(order)
}

// HandleDeleteOrder soft-deletes an order for audit retention. Admin only.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.orderService.DeleteOrder(middleware.CurrentUser(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted",
	})
}
