package repositories

import (
	"errors"
	"fmt"
	"time"

	"tweeps/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all non-deleted orders.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("is_deleted = ?", false).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string, includeDeleted bool) (*models.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order", models.ErrNotFound)
	}
	var order models.Order
	query := r.db
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// GetByUserID retrieves all non-deleted orders for the user, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Create persists a new order after validating the creation invariants.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	order.EnsureID()
	err := withStorageRetry(func() error {
		return r.db.Create(order).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus persists a status transition with a guarded update: the row
// must still be at the from-status. A concurrent transition that got there
// first leaves RowsAffected at zero and is reported as a conflict.
func (r *GORMOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) error {
	var res *gorm.DB
	err := withStorageRetry(func() error {
		res = r.db.Model(&models.Order{}).
			Where("id = ? AND status = ? AND is_deleted = ?", id, from, false).
			Updates(map[string]interface{}{
				"status":     to,
				"updated_at": time.Now().UTC(),
			})
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		if _, getErr := r.GetByID(id, false); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: order %s is no longer %s", models.ErrConflict, id, from)
	}
	return nil
}

// SoftDelete retains the order row for audit, flagged as deleted.
func (r *GORMOrderRepository) SoftDelete(id string) error {
	var res *gorm.DB
	err := withStorageRetry(func() error {
		now := time.Now().UTC()
		res = r.db.Model(&models.Order{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"deleted_at": &now,
				"updated_at": now,
			})
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, id)
	}
	return nil
}
