package repositories

import "tweeps/internal/models"

// MenuItemRepository defines the interface for menu item data access.
type MenuItemRepository interface {
	GetAll() ([]models.MenuItem, error)
	GetByID(id string, includeDeleted bool) (*models.MenuItem, error)
	// GetByIDs resolves items for cart/order pricing. Soft-deleted items are
	// included so callers can flag dead lines instead of dropping them.
	GetByIDs(ids []string) (map[string]*models.MenuItem, error)
	GetDealOfTheDay() (*models.MenuItem, error)
	Create(item *models.MenuItem) error
	BulkCreate(items []models.MenuItem) ([]models.MenuItem, error)
	Save(item *models.MenuItem) error
	// UpdateFields applies a partial update, rejecting unknown field names.
	UpdateFields(id string, fields map[string]interface{}) (*models.MenuItem, error)
	SoftDelete(id string) error
	// SetDealOfTheDay marks one item as the deal, clearing all others first.
	SetDealOfTheDay(id string) error
}
