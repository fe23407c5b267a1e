package repositories

import "tweeps/internal/models"

// CartRepository defines the interface for cart data access. Save enforces
// optimistic concurrency: a write against a stale cart version fails with
// models.ErrConflict, and the caller re-fetches and retries.
type CartRepository interface {
	GetByUserID(userID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	Save(cart *models.Cart) error
}
