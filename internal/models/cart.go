package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity bounds for a single cart line.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 99
)

// CartLine is one selected menu item with its quantity and topping names.
type CartLine struct {
	Quantity int      `json:"quantity"`
	Toppings []string `json:"toppings"`
}

// CartLines maps menu item ID to its line. Stored as a JSON column.
type CartLines map[string]CartLine

// Value implements driver.Valuer.
func (l CartLines) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart lines: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *CartLines) Scan(value interface{}) error {
	if value == nil {
		*l = CartLines{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported cart lines column type %T", value)
	}
	if len(data) == 0 {
		*l = CartLines{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Cart is a user's mutable selection of menu items. One cart per user,
// created implicitly on the first item add. Version backs optimistic
// concurrency: every persisted mutation increments it, and a stale write
// is reported as a conflict instead of silently winning.
type Cart struct {
	Record
	UserID     string    `json:"user_id" gorm:"uniqueIndex;type:varchar(40)"`
	Items      CartLines `json:"items" gorm:"type:text"`
	TotalPrice float64   `json:"total_price"`
	Version    int64     `json:"-" gorm:"default:0"`
}

// NewCart returns an empty cart for the user.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: CartLines{}}
}

// Validate checks the cart invariants.
func (c *Cart) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: cart requires an owner", ErrValidation)
	}
	for id, line := range c.Items {
		if line.Quantity < MinLineQuantity || line.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: quantity for item %s must be between %d and %d",
				ErrValidation, id, MinLineQuantity, MaxLineQuantity)
		}
	}
	if c.TotalPrice < 0 {
		return fmt.Errorf("%w: total price must be non-negative", ErrValidation)
	}
	return nil
}

// AddLine adds the item to the cart or sums quantities if already present.
// Exceeding the quantity cap is an error, not a silent clamp. The item must
// be orderable and every selected topping must exist on it.
func (c *Cart) AddLine(item *MenuItem, quantity int, toppings []string) error {
	if quantity < MinLineQuantity || quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d", ErrValidation, MinLineQuantity, MaxLineQuantity)
	}
	if item == nil {
		return fmt.Errorf("%w: menu item", ErrNotFound)
	}
	if !item.Orderable() {
		return fmt.Errorf("%w: %s", ErrUnavailable, item.Name)
	}
	for _, name := range toppings {
		if !item.HasTopping(name) {
			return fmt.Errorf("%w: item %s has no topping %q", ErrValidation, item.Name, name)
		}
	}

	if c.Items == nil {
		c.Items = CartLines{}
	}
	line, exists := c.Items[item.ID]
	if exists {
		if line.Quantity+quantity > MaxLineQuantity {
			return fmt.Errorf("%w: quantity for %s would exceed %d", ErrValidation, item.Name, MaxLineQuantity)
		}
		line.Quantity += quantity
		if len(toppings) > 0 {
			line.Toppings = toppings
		}
	} else {
		line = CartLine{Quantity: quantity, Toppings: toppings}
	}
	c.Items[item.ID] = line
	return nil
}

// RemoveLine removes the line entirely when quantity <= 0 or >= the current
// quantity, otherwise decrements. The item must be present in the cart.
func (c *Cart) RemoveLine(menuItemID string, quantity int) error {
	line, ok := c.Items[menuItemID]
	if !ok {
		return fmt.Errorf("%w: item not in cart", ErrNotFound)
	}
	if quantity <= 0 || quantity >= line.Quantity {
		delete(c.Items, menuItemID)
		return nil
	}
	line.Quantity -= quantity
	c.Items[menuItemID] = line
	return nil
}

// SetLineQuantity sets an absolute quantity for an existing line.
func (c *Cart) SetLineQuantity(menuItemID string, quantity int) error {
	if quantity < MinLineQuantity || quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d", ErrValidation, MinLineQuantity, MaxLineQuantity)
	}
	line, ok := c.Items[menuItemID]
	if !ok {
		return fmt.Errorf("%w: item not in cart", ErrNotFound)
	}
	line.Quantity = quantity
	c.Items[menuItemID] = line
	return nil
}

// ClearLines empties the cart and zeroes the total.
func (c *Cart) ClearLines() {
	c.Items = CartLines{}
	c.TotalPrice = 0
}

// RecomputeTotal derives the total from the current menu item state, rounded
// to 2 decimal places. Lines whose menu item is missing, unavailable, or
// soft-deleted are excluded from the sum but stay in the cart; the detailed
// view flags them to the caller.
func (c *Cart) RecomputeTotal(menu map[string]*MenuItem) {
	total := decimal.Zero
	for id, line := range c.Items {
		item := menu[id]
		if !item.Orderable() {
			continue
		}
		total = total.Add(item.UnitPrice(line.Toppings).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	c.TotalPrice = total.Round(2).InexactFloat64()
}
