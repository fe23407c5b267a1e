package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tweeps/internal/models"
	"tweeps/internal/repositories"
	"tweeps/pkg/rabbitmq"

	"github.com/shopspring/decimal"
)

// EventPublisher publishes order lifecycle events. Satisfied by
// *rabbitmq.Client; a nil publisher disables events.
type EventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
}

// OrderService handles checkout and the order status lifecycle.
type OrderService struct {
	orders repositories.OrderRepository
	carts  repositories.CartRepository
	menu   repositories.MenuItemRepository
	events EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, carts repositories.CartRepository, menu repositories.MenuItemRepository, events EventPublisher) *OrderService {
	return &OrderService{
		orders: orders,
		carts:  carts,
		menu:   menu,
		events: events,
	}
}

// Checkout converts the user's cart into an order. Prices are frozen from
// the menu as it stands now; the stored total is never recomputed afterward.
// Every line must reference an orderable item. On success the cart is
// cleared and an order.created event is published.
func (s *OrderService) Checkout(user *models.User, notes, deliveryAddress string) (*models.Order, error) {
	cart, err := s.carts.GetByUserID(user.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: cart is empty", models.ErrValidation)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", models.ErrValidation)
	}

	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}
	menu, err := s.menu.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	lines := make(models.OrderLines, len(cart.Items))
	for id, cartLine := range cart.Items {
		item := menu[id]
		if !item.Orderable() {
			name := id
			if item != nil {
				name = item.Name
			}
			return nil, fmt.Errorf("%w: %s", models.ErrUnavailable, name)
		}
		toppingPrice := item.UnitPrice(cartLine.Toppings).Sub(decimal.NewFromFloat(item.Price))
		lines[id] = models.OrderLine{
			Name:         item.Name,
			Quantity:     cartLine.Quantity,
			UnitPrice:    item.Price,
			Toppings:     cartLine.Toppings,
			ToppingPrice: toppingPrice.InexactFloat64(),
		}
	}

	if deliveryAddress == "" {
		deliveryAddress = user.Address
	}
	order := &models.Order{
		UserID:          user.ID,
		Items:           lines,
		Status:          models.StatusPending,
		Date:            time.Now().UTC(),
		Notes:           notes,
		DeliveryAddress: deliveryAddress,
	}
	order.Total = order.SnapshotTotal()

	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	// The order exists from here on; clearing the cart is best-effort and a
	// stale leftover cart is recoverable by the user.
	cart.ClearLines()
	if err := s.carts.Save(cart); err != nil {
		log.Printf("Warning: failed to clear cart for user %s after checkout: %v", user.ID, err)
	}

	s.publish("order.created", order)
	return order, nil
}

// GetOrder retrieves a single order. Owners see their own; admins see any.
func (s *OrderService) GetOrder(actor *models.User, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(id, false)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin {
		return nil, fmt.Errorf("%w: not your order", models.ErrForbidden)
	}
	return order, nil
}

// ListOrders returns the actor's own orders, newest first.
func (s *OrderService) ListOrders(actor *models.User) ([]models.Order, error) {
	return s.orders.GetByUserID(actor.ID)
}

// ListAllOrders returns every order. Admin only.
func (s *OrderService) ListAllOrders(actor *models.User) ([]models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.orders.GetAll()
}

// UpdateStatus advances an order through its lifecycle. Transitions absent
// from the table are rejected and never retried. Admins may apply any
// permitted transition; the owner may only cancel.
func (s *OrderService) UpdateStatus(actor *models.User, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrValidation, next)
	}
	order, err := s.orders.GetByID(id, false)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		if order.UserID != actor.ID {
			return nil, fmt.Errorf("%w: not your order", models.ErrForbidden)
		}
		if next != models.StatusCancelled {
			return nil, fmt.Errorf("%w: only cancellation is allowed", models.ErrForbidden)
		}
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, next)
	}

	if err := s.orders.UpdateStatus(id, order.Status, next); err != nil {
		return nil, err
	}
	order.Status = next
	order.Touch()

	s.publish("order.status_changed", order)
	return order, nil
}

// DeleteOrder soft-deletes an order, retaining it for audit. Admin only.
func (s *OrderService) DeleteOrder(actor *models.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.orders.SoftDelete(id)
}

// CalculateTotal recomputes the expected total from the menu as it stands
// now, for reconciliation against the frozen stored total. The two diverge
// when prices changed after placement; callers decide which to trust. Lines
// whose item no longer exists contribute nothing.
func (s *OrderService) CalculateTotal(actor *models.User, id string) (float64, error) {
	order, err := s.GetOrder(actor, id)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(order.Items))
	for itemID := range order.Items {
		ids = append(ids, itemID)
	}
	menu, err := s.menu.GetByIDs(ids)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for itemID, line := range order.Items {
		item, ok := menu[itemID]
		if !ok {
			continue
		}
		total = total.Add(item.UnitPrice(line.Toppings).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.Round(2).InexactFloat64(), nil
}

// publish sends an order lifecycle event, logging instead of failing the
// request when the broker is unavailable.
func (s *OrderService) publish(event string, order *models.Order) {
	if s.events == nil {
		return
	}
	err := s.events.PublishOrderEvent(rabbitmq.OrderEvent{
		Event:     event,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    string(order.Status),
		Total:     order.Total,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
