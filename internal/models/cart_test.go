package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPizza() *MenuItem {
	item := &MenuItem{
		Name:        "Pizza",
		Price:       10.00,
		IsAvailable: true,
		Toppings: ToppingList{
			{Name: "Cheese", Price: 1.00},
			{Name: "Pepperoni", Price: 2.00},
		},
	}
	item.ID = "pizza-1"
	return item
}

func TestCartAddLine(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()

	err := cart.AddLine(item, 2, []string{"Cheese"})
	assert.NoError(t, err)
	assert.Equal(t, 2, cart.Items[item.ID].Quantity)
	assert.Equal(t, []string{"Cheese"}, cart.Items[item.ID].Toppings)

	// Adding the same item again sums quantities.
	err = cart.AddLine(item, 3, nil)
	assert.NoError(t, err)
	assert.Equal(t, 5, cart.Items[item.ID].Quantity)
	assert.Equal(t, []string{"Cheese"}, cart.Items[item.ID].Toppings)
}

func TestCartAddLineQuantityBounds(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()

	assert.ErrorIs(t, cart.AddLine(item, 0, nil), ErrValidation)
	assert.ErrorIs(t, cart.AddLine(item, 100, nil), ErrValidation)

	// Summing past the cap is an error, and the existing line is untouched.
	assert.NoError(t, cart.AddLine(item, 98, nil))
	assert.ErrorIs(t, cart.AddLine(item, 2, nil), ErrValidation)
	assert.Equal(t, 98, cart.Items[item.ID].Quantity)
}

func TestCartAddLineRejectsUnavailableItem(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()
	item.IsAvailable = false

	assert.ErrorIs(t, cart.AddLine(item, 1, nil), ErrUnavailable)
	assert.ErrorIs(t, cart.AddLine(nil, 1, nil), ErrNotFound)
}

func TestCartAddLineRejectsUnknownTopping(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()

	err := cart.AddLine(item, 1, []string{"Pineapple"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, cart.Items)
}

func TestCartRemoveLine(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()
	assert.NoError(t, cart.AddLine(item, 5, nil))

	// Partial removal decrements.
	assert.NoError(t, cart.RemoveLine(item.ID, 2))
	assert.Equal(t, 3, cart.Items[item.ID].Quantity)

	// Removing at least the current quantity drops the line.
	assert.NoError(t, cart.RemoveLine(item.ID, 3))
	assert.NotContains(t, cart.Items, item.ID)

	assert.ErrorIs(t, cart.RemoveLine(item.ID, 1), ErrNotFound)
}

func TestCartRemoveLineZeroQuantityRemovesAll(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()
	assert.NoError(t, cart.AddLine(item, 5, nil))

	assert.NoError(t, cart.RemoveLine(item.ID, 0))
	assert.NotContains(t, cart.Items, item.ID)
}

func TestCartSetLineQuantity(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()
	assert.NoError(t, cart.AddLine(item, 2, nil))

	assert.NoError(t, cart.SetLineQuantity(item.ID, 7))
	assert.Equal(t, 7, cart.Items[item.ID].Quantity)

	assert.ErrorIs(t, cart.SetLineQuantity(item.ID, 0), ErrValidation)
	assert.ErrorIs(t, cart.SetLineQuantity("missing", 1), ErrNotFound)
}

func TestCartRecomputeTotal(t *testing.T) {
	cart := NewCart("user-1")
	item := testPizza()
	assert.NoError(t, cart.AddLine(item, 2, []string{"Cheese"}))

	menu := map[string]*MenuItem{item.ID: item}
	cart.RecomputeTotal(menu)

	// (10.00 + 1.00) * 2
	assert.Equal(t, 22.00, cart.TotalPrice)
}

func TestCartRecomputeTotalExcludesDeadLines(t *testing.T) {
	cart := NewCart("user-1")
	pizza := testPizza()
	burger := &MenuItem{Name: "Burger", Price: 7.25, IsAvailable: true}
	burger.ID = "burger-1"

	assert.NoError(t, cart.AddLine(pizza, 1, nil))
	assert.NoError(t, cart.AddLine(burger, 2, nil))

	// Burger goes unavailable after it was added; its line stays in the
	// cart but no longer counts toward the total.
	burger.IsAvailable = false
	cart.RecomputeTotal(map[string]*MenuItem{pizza.ID: pizza, burger.ID: burger})

	assert.Equal(t, 10.00, cart.TotalPrice)
	assert.Contains(t, cart.Items, burger.ID)

	// Same for an item that disappeared from the menu entirely.
	cart.RecomputeTotal(map[string]*MenuItem{pizza.ID: pizza})
	assert.Equal(t, 10.00, cart.TotalPrice)
}

func TestCartClearLines(t *testing.T) {
	cart := NewCart("user-1")
	assert.NoError(t, cart.AddLine(testPizza(), 2, nil))
	cart.TotalPrice = 20.00

	cart.ClearLines()
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestCartValidate(t *testing.T) {
	cart := NewCart("user-1")
	assert.NoError(t, cart.Validate())

	cart.Items = CartLines{"x": {Quantity: 0}}
	assert.ErrorIs(t, cart.Validate(), ErrValidation)

	assert.ErrorIs(t, NewCart("").Validate(), ErrValidation)
}
