package repositories

import (
	"errors"
	"fmt"
	"time"

	"tweeps/internal/models"

	"gorm.io/gorm"
)

// menuItemFields are the columns a partial update may touch.
var menuItemFields = map[string]bool{
	"name":         true,
	"description":  true,
	"price":        true,
	"category":     true,
	"image_url":    true,
	"is_available": true,
	"toppings":     true,
}

// GORMMenuItemRepository is a GORM implementation of MenuItemRepository.
type GORMMenuItemRepository struct {
	db *gorm.DB
}

// NewGORMMenuItemRepository creates a new instance of GORMMenuItemRepository.
func NewGORMMenuItemRepository(db *gorm.DB) *GORMMenuItemRepository {
	return &GORMMenuItemRepository{
		db: db,
	}
}

// GetAll retrieves all non-deleted menu items.
func (r *GORMMenuItemRepository) GetAll() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.Where("is_deleted = ?", false).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single menu item by its ID.
func (r *GORMMenuItemRepository) GetByID(id string, includeDeleted bool) (*models.MenuItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: menu item", models.ErrNotFound)
	}
	var item models.MenuItem
	query := r.db
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if err := query.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get menu item %s: %w", id, err)
	}
	return &item, nil
}

// GetByIDs resolves the given IDs to items, soft-deleted included. Missing
// IDs are simply absent from the result map.
func (r *GORMMenuItemRepository) GetByIDs(ids []string) (map[string]*models.MenuItem, error) {
	result := make(map[string]*models.MenuItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var items []models.MenuItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}
	for i := range items {
		result[items[i].ID] = &items[i]
	}
	return result, nil
}

// GetDealOfTheDay returns the current deal item, if any.
func (r *GORMMenuItemRepository) GetDealOfTheDay() (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.Where("is_deleted = ? AND is_deal_of_the_day = ?", false, true).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal of the day", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deal of the day: %w", err)
	}
	return &item, nil
}

// Create persists a new menu item.
func (r *GORMMenuItemRepository) Create(item *models.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.EnsureID()
	err := withStorageRetry(func() error {
		return r.db.Create(item).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

// BulkCreate persists multiple items in a single transaction.
func (r *GORMMenuItemRepository) BulkCreate(items []models.MenuItem) ([]models.MenuItem, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
		items[i].EnsureID()
	}
	err := withStorageRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			for i := range items {
				if err := tx.Create(&items[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk create menu items: %w", err)
	}
	return items, nil
}

// Save persists a fully modified menu item.
func (r *GORMMenuItemRepository) Save(item *models.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.Touch()
	var res *gorm.DB
	err := withStorageRetry(func() error {
		res = r.db.Save(item)
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("failed to save menu item %s: %w", item.ID, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: menu item %s", models.ErrNotFound, item.ID)
	}
	return nil
}

// UpdateFields applies a partial update transactionally. Unknown field names
// are rejected before any storage work; business invariants are re-validated
// before commit.
func (r *GORMMenuItemRepository) UpdateFields(id string, fields map[string]interface{}) (*models.MenuItem, error) {
	if err := filterFields(fields, menuItemFields); err != nil {
		return nil, err
	}
	var updated *models.MenuItem
	err := withStorageRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			var item models.MenuItem
			if err := tx.Where("is_deleted = ?", false).First(&item, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
				}
				return err
			}
			fields["updated_at"] = time.Now().UTC()
			if err := tx.Model(&item).Updates(fields).Error; err != nil {
				return err
			}
			if err := item.Validate(); err != nil {
				return err
			}
			updated = &item
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete flags the item as deleted instead of removing the row.
func (r *GORMMenuItemRepository) SoftDelete(id string) error {
	var res *gorm.DB
	err := withStorageRetry(func() error {
		now := time.Now().UTC()
		res = r.db.Model(&models.MenuItem{}).
			Where("id = ? AND is_deleted = ?", id, false).
			Updates(map[string]interface{}{
				"is_deleted":   true,
				"deleted_at":   &now,
				"updated_at":   now,
				"is_available": false,
			})
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete menu item %s: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	return nil
}

// SetDealOfTheDay clears the flag on every item, then sets it on the target.
func (r *GORMMenuItemRepository) SetDealOfTheDay(id string) error {
	return withStorageRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.MenuItem{}).
				Where("is_deal_of_the_day = ?", true).
				Update("is_deal_of_the_day", false).Error; err != nil {
				return err
			}
			res := tx.Model(&models.MenuItem{}).
				Where("id = ? AND is_deleted = ?", id, false).
				Update("is_deal_of_the_day", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
			}
			return nil
		})
	})
}
