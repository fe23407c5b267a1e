package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuItemValidate(t *testing.T) {
	item := MenuItem{
		Name:        "Margherita Pizza",
		Price:       9.50,
		IsAvailable: true,
		Toppings: ToppingList{
			{Name: "Cheese", Price: 1.00},
		},
	}
	assert.NoError(t, item.Validate())
}

func TestMenuItemValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		item MenuItem
	}{
		{"name too short", MenuItem{Name: "X", Price: 5.00}},
		{"price zero", MenuItem{Name: "Pizza", Price: 0}},
		{"price below minimum", MenuItem{Name: "Pizza", Price: 0.001}},
		{"price above maximum", MenuItem{Name: "Pizza", Price: 10000.01}},
		{"unnamed topping", MenuItem{Name: "Pizza", Price: 5.00, Toppings: ToppingList{{Name: "", Price: 1.00}}}},
		{"negative topping price", MenuItem{Name: "Pizza", Price: 5.00, Toppings: ToppingList{{Name: "Cheese", Price: -1.00}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestMenuItemOrderable(t *testing.T) {
	var missing *MenuItem
	assert.False(t, missing.Orderable())

	item := &MenuItem{Name: "Pizza", Price: 5.00, IsAvailable: true}
	assert.True(t, item.Orderable())

	item.IsAvailable = false
	assert.False(t, item.Orderable())

	item.IsAvailable = true
	item.IsDeleted = true
	assert.False(t, item.Orderable())
}

func TestMenuItemUnitPrice(t *testing.T) {
	item := &MenuItem{
		Name:  "Pizza",
		Price: 10.00,
		Toppings: ToppingList{
			{Name: "Cheese", Price: 1.00},
			{Name: "Pepperoni", Price: 2.00},
		},
	}

	assert.Equal(t, 10.00, item.UnitPrice(nil).InexactFloat64())
	assert.Equal(t, 11.00, item.UnitPrice([]string{"Cheese"}).InexactFloat64())
	assert.Equal(t, 13.00, item.UnitPrice([]string{"Cheese", "Pepperoni"}).InexactFloat64())

	// Unknown topping names contribute nothing.
	assert.Equal(t, 10.00, item.UnitPrice([]string{"Pineapple"}).InexactFloat64())
}

func TestMenuItemHasTopping(t *testing.T) {
	item := &MenuItem{
		Name:     "Pizza",
		Price:    10.00,
		Toppings: ToppingList{{Name: "Cheese", Price: 1.00}},
	}
	assert.True(t, item.HasTopping("Cheese"))
	assert.False(t, item.HasTopping("Bacon"))
}
