package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"tweeps/internal/middleware"
	"tweeps/internal/models"
	"tweeps/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MenuHandler handles HTTP requests for the menu catalog.
type MenuHandler struct {
	menuService *services.MenuService
	validate    *validator.Validate
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(menuService *services.MenuService) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public menu routes.
func (h *MenuHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/menu", h.HandleGetMenu)
	router.Get("/categories", h.HandleGetCategories)
}

// RegisterAdminRoutes registers the admin-only catalog routes.
func (h *MenuHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/menu", h.HandleCreateItem)
	router.Put("/menu/:id", h.HandleUpdateItem)
	router.Delete("/menu/:id", h.HandleDeleteItem)
	router.Post("/deal", h.HandleSetDealOfTheDay)
}

// HandleGetMenu returns the deal of the day and items grouped by category.
func (h *MenuHandler) HandleGetMenu(c *fiber.Ctx) error {
	view, err := h.menuService.GetMenu(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve menu", err)
	}
	return c.JSON(view)
}

// HandleGetCategories returns the fixed storefront categories.
func (h *MenuHandler) HandleGetCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": h.menuService.Categories(),
	})
}

// MenuItemRequest represents the request body for creating a menu item.
type MenuItemRequest struct {
	Name        string           `json:"name" validate:"required,min=2,max=100"`
	Description string           `json:"description" validate:"omitempty,max=500"`
	Price       float64          `json:"price" validate:"required,gt=0"`
	Category    string           `json:"category" validate:"omitempty,max=60"`
	ImageURL    string           `json:"image_url" validate:"omitempty,max=255"`
	IsAvailable bool             `json:"is_available"`
	Toppings    []models.Topping `json:"toppings" validate:"omitempty,dive"`
}

// HandleCreateItem creates a new menu item.
func (h *MenuHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req MenuItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing menu item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	item := &models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		IsAvailable: req.IsAvailable,
		Toppings:    req.Toppings,
	}
	if err := h.menuService.CreateItem(c.UserContext(), middleware.CurrentUser(c), item); err != nil {
		return respondError(c, "Could not create menu item", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem applies a partial update to a menu item. Unknown field
// names in the body are rejected rather than ignored.
func (h *MenuHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(fields) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No fields to update",
		})
	}
	if raw, ok := fields["toppings"]; ok {
		toppings, err := decodeToppings(raw)
		if err != nil {
			return respondError(c, "Could not update menu item", err)
		}
		fields["toppings"] = toppings
	}

	item, err := h.menuService.UpdateItem(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), fields)
	if err != nil {
		return respondError(c, "Could not update menu item", err)
	}
	return c.JSON(item)
}

// HandleDeleteItem soft-deletes a menu item.
func (h *MenuHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.menuService.DeleteItem(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete menu item", err)
	}
	return c.JSON(fiber.Map{
		"message": "Menu item deleted",
	})
}

// DealRequest represents the request body for setting the deal of the day.
type DealRequest struct {
	DealID string `json:"deal_id" validate:"required"`
}

// HandleSetDealOfTheDay marks one item as the deal of the day, exclusively.
func (h *MenuHandler) HandleSetDealOfTheDay(c *fiber.Ctx) error {
	var req DealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.menuService.SetDealOfTheDay(c.UserContext(), middleware.CurrentUser(c), req.DealID); err != nil {
		return respondError(c, "Could not update deal of the day", err)
	}
	return c.JSON(fiber.Map{
		"message": "Deal of the Day updated successfully",
	})
}

func decodeToppings(raw interface{}) (models.ToppingList, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid toppings", models.ErrValidation)
	}
	var toppings models.ToppingList
	if err := json.Unmarshal(encoded, &toppings); err != nil {
		return nil, fmt.Errorf("%w: invalid toppings", models.ErrValidation)
	}
	return toppings, nil
}
