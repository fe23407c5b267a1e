package repositories

import (
	"errors"
	"fmt"
	"time"

	"tweeps/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the user's cart.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("is_deleted = ?", false).First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart for user %s", models.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Create persists a new cart. A user has at most one; a concurrent create
// for the same user trips the unique index and reports a conflict.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if err := cart.Validate(); err != nil {
		return err
	}
	cart.EnsureID()
	err := withStorageRetry(func() error {
		return r.db.Create(cart).Error
	})
	if err != nil {
		if duplicateKeyError(err) {
			return fmt.Errorf("%w: cart already exists for user %s", models.ErrConflict, cart.UserID)
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// Save persists a mutated cart with a guarded update: the row must still be
// at the version the cart was read at. A concurrent writer that got there
// first leaves RowsAffected at zero and the save reports ErrConflict.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	if err := cart.Validate(); err != nil {
		return err
	}
	var res *gorm.DB
	err := withStorageRetry(func() error {
		res = r.db.Model(&models.Cart{}).
			Where("id = ? AND version = ?", cart.ID, cart.Version).
			Updates(map[string]interface{}{
				"items":       cart.Items,
				"total_price": cart.TotalPrice,
				"version":     cart.Version + 1,
				"updated_at":  time.Now().UTC(),
			})
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: cart %s was modified concurrently", models.ErrConflict, cart.ID)
	}
	cart.Version++
	return nil
}
