package handlers

import (
	"log"

	"tweeps/internal/middleware"
	"tweeps/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes. All require authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateItemQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// HandleGetCart returns the detailed cart view with current item state
// embedded per line.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.cartService.GetCart(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, "Could not retrieve cart", err)
	}
	return c.JSON(view)
}

// AddItemRequest represents the request body for adding a cart item.
type AddItemRequest struct {
	MenuItemID string   `json:"menu_item_id" validate:"required"`
	Quantity   int      `json:"quantity" validate:"omitempty,min=1,max=99"`
	Toppings   []string `json:"toppings"`
}

// HandleAddItem adds a menu item to the cart, creating the cart on first use.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.cartService.AddItem(middleware.CurrentUser(c).ID, req.MenuItemID, req.Quantity, req.Toppings)
	if err != nil {
		return respondError(c, "Could not add item to cart", err)
	}
	return c.JSON(view)
}

// UpdateQuantityRequest represents the request body for a quantity update.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

// HandleUpdateItemQuantity sets an absolute quantity for an existing line.
func (h *CartHandler) HandleUpdateItemQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	view, err := h.cartService.UpdateItemQuantity(middleware.CurrentUser(c).ID, c.Params("id"), req.Quantity)
	if err != nil {
		return respondError(c, "Could not update cart item", err)
	}
	return c.JSON(view)
}

// HandleRemoveItem removes a line, or decrements it when a quantity query
// parameter is given.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	quantity := c.QueryInt("quantity", 0)

	view, err := h.cartService.RemoveItem(middleware.CurrentUser(c).ID, c.Params("id"), quantity)
	if err != nil {
		return respondError(c, "Could not remove cart item", err)
	}
	return c.JSON(view)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	view, err := h.cartService.Clear(middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, "Could not clear cart", err)
	}
	return c.JSON(view)
}
