package repositories

import (
	"fmt"
	"sync"
	"time"

	"tweeps/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all non-deleted orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if !order.IsDeleted {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string, includeDeleted bool) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok || (order.IsDeleted && !includeDeleted) {
		return nil, fmt.Errorf("%w: order %s", models.ErrNotFound, id)
	}
	return &order, nil
}

// GetByUserID returns the user's non-deleted orders.
func (r *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID && !order.IsDeleted {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus moves the order between statuses, guarded on the from-status.
func (r *MockOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.IsDeleted {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, id)
	}
	if order.Status != from {
		return fmt.Errorf("%w: order %s is no longer %s", models.ErrConflict, id, from)
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// SoftDelete flags the order as deleted, keeping the row for audit.
func (r *MockOrderRepository) SoftDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.IsDeleted {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, id)
	}
	order.MarkDeleted()
	r.orders[id] = order
	return nil
}
