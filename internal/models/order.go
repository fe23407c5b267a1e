package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// statusTransitions is the fixed table of allowed next states. Delivered and
// cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s is a member of the known status set.
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo is a pure predicate over the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(statusTransitions[s]) == 0
}

// OrderLine is a cart line frozen at checkout: the unit price and the price
// of the selected toppings are captured from the menu as it stood then.
type OrderLine struct {
	Name         string   `json:"name"`
	Quantity     int      `json:"quantity"`
	UnitPrice    float64  `json:"unit_price"`
	Toppings     []string `json:"toppings,omitempty"`
	ToppingPrice float64  `json:"topping_price,omitempty"`
}

// OrderLines maps menu item ID to its frozen line. Stored as a JSON column.
type OrderLines map[string]OrderLine

// Value implements driver.Valuer.
func (l OrderLines) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order lines: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *OrderLines) Scan(value interface{}) error {
	if value == nil {
		*l = OrderLines{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported order lines column type %T", value)
	}
	if len(data) == 0 {
		*l = OrderLines{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Order is an immutable-at-creation snapshot of a cart. The total is computed
// once at checkout and never auto-recomputed; after creation the only
// mutation is a status transition. Orders are soft-deleted only, for audit
// retention.
type Order struct {
	Record
	UserID          string      `json:"user_id" gorm:"index;type:varchar(40)"`
	Items           OrderLines  `json:"items" gorm:"type:text"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(15);default:pending"`
	Date            time.Time   `json:"date"`
	Notes           string      `json:"notes"`
	DeliveryAddress string      `json:"delivery_address"`
}

// Validate checks the creation invariants: non-empty items, positive
// quantities, positive total, known status.
func (o *Order) Validate() error {
	if o.UserID == "" {
		return fmt.Errorf("%w: order requires an owner", ErrValidation)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for id, line := range o.Items {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for item %s must be positive", ErrValidation, id)
		}
	}
	if o.Total <= 0 {
		return fmt.Errorf("%w: order total must be positive", ErrValidation)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", ErrValidation, o.Status)
	}
	return nil
}

// LineTotal is the frozen price of one line.
func (l OrderLine) LineTotal() decimal.Decimal {
	unit := decimal.NewFromFloat(l.UnitPrice).Add(decimal.NewFromFloat(l.ToppingPrice))
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SnapshotTotal sums the frozen lines, rounded to 2 decimal places.
func (o *Order) SnapshotTotal() float64 {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.LineTotal())
	}
	return total.Round(2).InexactFloat64()
}
