package repositories

import (
	"fmt"
	"sync"
	"time"

	"tweeps/internal/models"

	"github.com/google/uuid"
)

// MockMenuItemRepository is an in-memory implementation of MenuItemRepository.
type MockMenuItemRepository struct {
	items map[string]models.MenuItem
	mu    sync.RWMutex
}

// NewMockMenuItemRepository creates a new instance of MockMenuItemRepository.
func NewMockMenuItemRepository() *MockMenuItemRepository {
	return &MockMenuItemRepository{
		items: make(map[string]models.MenuItem),
	}
}

// GetAll returns all non-deleted menu items.
func (r *MockMenuItemRepository) GetAll() ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		if !item.IsDeleted {
			itemList = append(itemList, item)
		}
	}
	return itemList, nil
}

// GetByID returns a menu item by its ID.
func (r *MockMenuItemRepository) GetByID(id string, includeDeleted bool) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok || (item.IsDeleted && !includeDeleted) {
		return nil, fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	return &item, nil
}

// GetByIDs resolves the given IDs, soft-deleted included.
func (r *MockMenuItemRepository) GetByIDs(ids []string) (map[string]*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*models.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			copied := item
			result[id] = &copied
		}
	}
	return result, nil
}

// GetDealOfTheDay returns the current deal item.
func (r *MockMenuItemRepository) GetDealOfTheDay() (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.IsDealOfTheDay && !item.IsDeleted {
			copied := item
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: deal of the day", models.ErrNotFound)
}

// Create adds a new menu item.
func (r *MockMenuItemRepository) Create(item *models.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

// BulkCreate adds multiple menu items.
func (r *MockMenuItemRepository) BulkCreate(items []models.MenuItem) ([]models.MenuItem, error) {
	for i := range items {
		if err := r.Create(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Save replaces an existing menu item.
func (r *MockMenuItemRepository) Save(item *models.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("%w: menu item %s", models.ErrNotFound, item.ID)
	}
	item.UpdatedAt = time.Now().UTC()
	r.items[item.ID] = *item
	return nil
}

// UpdateFields applies a partial update, rejecting unknown field names.
func (r *MockMenuItemRepository) UpdateFields(id string, fields map[string]interface{}) (*models.MenuItem, error) {
	if err := filterFields(fields, menuItemFields); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.IsDeleted {
		return nil, fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}

	for name, value := range fields {
		switch name {
		case "name":
			item.Name, _ = value.(string)
		case "description":
			item.Description, _ = value.(string)
		case "price":
			item.Price, _ = value.(float64)
		case "category":
			item.Category, _ = value.(string)
		case "image_url":
			item.ImageURL, _ = value.(string)
		case "is_available":
			item.IsAvailable, _ = value.(bool)
		case "toppings":
			if toppings, ok := value.(models.ToppingList); ok {
				item.Toppings = toppings
			}
		}
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return &item, nil
}

// SoftDelete flags the item as deleted.
func (r *MockMenuItemRepository) SoftDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.IsDeleted {
		return fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	item.MarkDeleted()
	item.IsAvailable = false
	r.items[id] = item
	return nil
}

// SetDealOfTheDay clears the flag everywhere, then sets it on the target.
func (r *MockMenuItemRepository) SetDealOfTheDay(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.items[id]
	if !ok || target.IsDeleted {
		return fmt.Errorf("%w: menu item %s", models.ErrNotFound, id)
	}
	for itemID, item := range r.items {
		if item.IsDealOfTheDay {
			item.IsDealOfTheDay = false
			r.items[itemID] = item
		}
	}
	target.IsDealOfTheDay = true
	r.items[id] = target
	return nil
}
