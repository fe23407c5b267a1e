package repositories

import "tweeps/internal/models"

// OrderRepository defines the interface for order data access. Orders are
// never hard-deleted; SoftDelete retains the row for audit.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string, includeDeleted bool) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus moves the order from one status to another atomically:
	// the update is guarded on the current status still being `from`.
	UpdateStatus(id string, from, to models.OrderStatus) error
	SoftDelete(id string) error
}
