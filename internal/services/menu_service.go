package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tweeps/internal/models"
	"tweeps/internal/repositories"
	"tweeps/pkg/cache"
)

const (
	menuCacheKey = "menu:view"
	menuCacheTTL = 5 * time.Minute
)

// MenuView is the menu read model: the deal of the day plus all items
// grouped by category.
type MenuView struct {
	DealOfTheDay *models.MenuItem             `json:"dealOfTheDay"`
	MenuItems    map[string][]models.MenuItem `json:"menuItems"`
}

// Category is a fixed storefront grouping.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MenuService handles business logic related to the menu catalog. All
// mutations are admin-only; the acting user is passed explicitly.
type MenuService struct {
	repo  repositories.MenuItemRepository
	store *cache.Cache
}

// NewMenuService creates a new MenuService.
func NewMenuService(repo repositories.MenuItemRepository, store *cache.Cache) *MenuService {
	return &MenuService{
		repo:  repo,
		store: store,
	}
}

// GetMenu returns the menu view, served from the Redis cache when warm.
func (s *MenuService) GetMenu(ctx context.Context) (*MenuView, error) {
	if cached, ok := s.store.Get(ctx, menuCacheKey); ok {
		var view MenuView
		if err := json.Unmarshal([]byte(cached), &view); err == nil {
			return &view, nil
		}
		log.Printf("Discarding unreadable cached menu view")
	}

	items, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	view := &MenuView{MenuItems: make(map[string][]models.MenuItem)}
	for _, item := range items {
		if item.IsDealOfTheDay {
			deal := item
			view.DealOfTheDay = &deal
		}
		category := item.Category
		if category == "" {
			category = "Uncategorized"
		}
		view.MenuItems[category] = append(view.MenuItems[category], item)
	}

	if encoded, err := json.Marshal(view); err == nil {
		s.store.Set(ctx, menuCacheKey, string(encoded), menuCacheTTL)
	}
	return view, nil
}

// Categories returns the fixed storefront category list.
func (s *MenuService) Categories() []Category {
	return []Category{
		{ID: "1", Name: "Deal of the Day"},
		{ID: "2", Name: "Popular Picks"},
		{ID: "3", Name: "New Arrivals"},
		{ID: "4", Name: "Chef's Favorites"},
	}
}

// GetItem retrieves a single menu item.
func (s *MenuService) GetItem(id string) (*models.MenuItem, error) {
	return s.repo.GetByID(id, false)
}

// CreateItem creates a new menu item. Admin only.
func (s *MenuService) CreateItem(ctx context.Context, actor *models.User, item *models.MenuItem) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Create(item); err != nil {
		return err
	}
	s.store.Delete(ctx, menuCacheKey)
	return nil
}

// CreateItems bulk-creates menu items. Admin only.
func (s *MenuService) CreateItems(ctx context.Context, actor *models.User, items []models.MenuItem) ([]models.MenuItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	created, err := s.repo.BulkCreate(items)
	if err != nil {
		return nil, err
	}
	s.store.Delete(ctx, menuCacheKey)
	return created, nil
}

// UpdateItem applies a partial update to a menu item. Admin only; unknown
// field names are rejected as a validation error.
func (s *MenuService) UpdateItem(ctx context.Context, actor *models.User, id string, fields map[string]interface{}) (*models.MenuItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateFields(id, fields)
	if err != nil {
		return nil, err
	}
	s.store.Delete(ctx, menuCacheKey)
	return updated, nil
}

// DeleteItem soft-deletes a menu item. Admin only.
func (s *MenuService) DeleteItem(ctx context.Context, actor *models.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(id); err != nil {
		return err
	}
	s.store.Delete(ctx, menuCacheKey)
	return nil
}

// SetDealOfTheDay marks exactly one item as the deal, clearing all others.
// Admin only.
func (s *MenuService) SetDealOfTheDay(ctx context.Context, actor *models.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.SetDealOfTheDay(id); err != nil {
		return err
	}
	s.store.Delete(ctx, menuCacheKey)
	return nil
}

func requireAdmin(actor *models.User) error {
	if actor == nil || !actor.IsAdmin {
		return fmt.Errorf("%w: admin privileges required", models.ErrForbidden)
	}
	return nil
}
