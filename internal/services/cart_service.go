package services

import (
	"errors"
	"fmt"

	"tweeps/internal/models"
	"tweeps/internal/repositories"

	"github.com/shopspring/decimal"
)

// maxConflictRetries bounds the re-fetch-and-retry loop around optimistic
// concurrency conflicts on cart writes.
const maxConflictRetries = 3

// CartLineView is one cart line with the current menu item state embedded.
// Unavailable flags lines whose item has since become unavailable or
// deleted: they are excluded from the total but not silently dropped.
type CartLineView struct {
	Item        *models.MenuItem `json:"item"`
	Quantity    int              `json:"quantity"`
	Toppings    []string         `json:"toppings"`
	LineTotal   float64          `json:"line_total"`
	Unavailable bool             `json:"unavailable"`
}

// CartView is the detailed cart read model.
type CartView struct {
	UserID     string                  `json:"user_id"`
	Items      map[string]CartLineView `json:"items"`
	TotalPrice float64                 `json:"total_price"`
}

// CartService handles business logic related to carts.
type CartService struct {
	carts repositories.CartRepository
	menu  repositories.MenuItemRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, menu repositories.MenuItemRepository) *CartService {
	return &CartService{
		carts: carts,
		menu:  menu,
	}
}

// GetCart returns the detailed cart view. A user without a cart yet gets an
// empty view rather than an error.
func (s *CartService) GetCart(userID string) (*CartView, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &CartView{UserID: userID, Items: map[string]CartLineView{}}, nil
		}
		return nil, err
	}
	return s.buildView(cart)
}

// AddItem adds a menu item to the user's cart, creating the cart on first
// use. Quantities for an already-present item are summed; exceeding the cap
// is an error.
func (s *CartService) AddItem(userID, menuItemID string, quantity int, toppings []string) (*CartView, error) {
	item, err := s.menu.GetByID(menuItemID, false)
	if err != nil {
		return nil, err
	}
	cart, err := s.mutate(userID, true, func(cart *models.Cart) error {
		return cart.AddLine(item, quantity, toppings)
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(cart)
}

// RemoveItem removes the line entirely when quantity <= 0 or covers the
// current quantity, otherwise decrements.
func (s *CartService) RemoveItem(userID, menuItemID string, quantity int) (*CartView, error) {
	cart, err := s.mutate(userID, false, func(cart *models.Cart) error {
		return cart.RemoveLine(menuItemID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(cart)
}

// UpdateItemQuantity sets an absolute quantity for an existing line.
func (s *CartService) UpdateItemQuantity(userID, menuItemID string, quantity int) (*CartView, error) {
	cart, err := s.mutate(userID, false, func(cart *models.Cart) error {
		return cart.SetLineQuantity(menuItemID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(cart)
}

// Clear empties the cart and zeroes the total.
func (s *CartService) Clear(userID string) (*CartView, error) {
	cart, err := s.mutate(userID, false, func(cart *models.Cart) error {
		cart.ClearLines()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(cart)
}

// mutate runs the fetch-mutate-recompute-save cycle, re-fetching and
// retrying on version conflicts up to maxConflictRetries times. Business
// failures from fn are returned as-is and never retried.
func (s *CartService) mutate(userID string, createIfMissing bool, fn func(cart *models.Cart) error) (*models.Cart, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		cart, err := s.carts.GetByUserID(userID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) || !createIfMissing {
				return nil, err
			}
			cart = models.NewCart(userID)
			if createErr := s.carts.Create(cart); createErr != nil {
				if errors.Is(createErr, models.ErrConflict) {
					// Another request created the cart first; re-fetch.
					lastErr = createErr
					continue
				}
				return nil, createErr
			}
		}

		if err := fn(cart); err != nil {
			return nil, err
		}
		if err := s.recomputeTotal(cart); err != nil {
			return nil, err
		}
		if err := s.carts.Save(cart); err != nil {
			if errors.Is(err, models.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return cart, nil
	}
	return nil, fmt.Errorf("%w: cart update kept conflicting: %v", models.ErrConflict, lastErr)
}

func (s *CartService) recomputeTotal(cart *models.Cart) error {
	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}
	menu, err := s.menu.GetByIDs(ids)
	if err != nil {
		return err
	}
	cart.RecomputeTotal(menu)
	return nil
}

func (s *CartService) buildView(cart *models.Cart) (*CartView, error) {
	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}
	menu, err := s.menu.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		UserID:     cart.UserID,
		Items:      make(map[string]CartLineView, len(cart.Items)),
		TotalPrice: cart.TotalPrice,
	}
	for id, line := range cart.Items {
		item := menu[id]
		lineView := CartLineView{
			Item:        item,
			Quantity:    line.Quantity,
			Toppings:    line.Toppings,
			Unavailable: !item.Orderable(),
		}
		if !lineView.Unavailable {
			lineView.LineTotal = item.UnitPrice(line.Toppings).
				Mul(decimal.NewFromInt(int64(line.Quantity))).
				Round(2).InexactFloat64()
		}
		view.Items[id] = lineView
	}
	return view, nil
}
