package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price bounds for a menu item.
const (
	MinItemPrice = 0.01
	MaxItemPrice = 10000.00
)

// Topping is an optional add-on for a menu item.
type Topping struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ToppingList is stored as a JSON column.
type ToppingList []Topping

// Value implements driver.Valuer.
func (t ToppingList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal toppings: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *ToppingList) Scan(value interface{}) error {
	if value == nil {
		*t = ToppingList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported topping column type %T", value)
	}
	if len(data) == 0 {
		*t = ToppingList{}
		return nil
	}
	return json.Unmarshal(data, t)
}

// MenuItem is a product on the menu.
type MenuItem struct {
	Record
	Name           string      `json:"name" validate:"required,min=2,max=100"`
	Description    string      `json:"description" validate:"omitempty,max=500"`
	Price          float64     `json:"price" validate:"required"`
	Category       string      `json:"category" validate:"omitempty,max=60"`
	ImageURL       string      `json:"image_url" validate:"omitempty,max=255"`
	IsAvailable    bool        `json:"is_available"`
	IsDealOfTheDay bool        `json:"is_deal_of_the_day" gorm:"default:false"`
	Toppings       ToppingList `json:"toppings" gorm:"type:text"`
}

// Validate checks the business invariants before persistence.
func (m *MenuItem) Validate() error {
	if len(m.Name) < 2 || len(m.Name) > 100 {
		return fmt.Errorf("%w: name must be 2-100 characters", ErrValidation)
	}
	if m.Price < MinItemPrice || m.Price > MaxItemPrice {
		return fmt.Errorf("%w: price must be between %.2f and %.2f", ErrValidation, MinItemPrice, MaxItemPrice)
	}
	for _, t := range m.Toppings {
		if t.Name == "" {
			return fmt.Errorf("%w: topping name is required", ErrValidation)
		}
		if t.Price < 0 {
			return fmt.Errorf("%w: topping %q price must be non-negative", ErrValidation, t.Name)
		}
	}
	return nil
}

// Orderable reports whether the item may be added to a cart or order.
func (m *MenuItem) Orderable() bool {
	return m != nil && m.IsAvailable && !m.IsDeleted
}

// HasTopping reports whether the item offers a topping by that name.
func (m *MenuItem) HasTopping(name string) bool {
	for _, t := range m.Toppings {
		if t.Name == name {
			return true
		}
	}
	return false
}

// UnitPrice is the item price plus the prices of the selected toppings.
// Topping names not offered by the item contribute nothing.
func (m *MenuItem) UnitPrice(selectedToppings []string) decimal.Decimal {
	price := decimal.NewFromFloat(m.Price)
	for _, name := range selectedToppings {
		for _, t := range m.Toppings {
			if t.Name == name {
				price = price.Add(decimal.NewFromFloat(t.Price))
				break
			}
		}
	}
	return price
}
