package repositories

import (
	"fmt"
	"sync"
	"time"

	"tweeps/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository with
// the same optimistic-concurrency behavior as the GORM one.
type MockCartRepository struct {
	carts map[string]models.Cart // keyed by user ID
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByUserID returns the user's cart.
func (r *MockCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok || cart.IsDeleted {
		return nil, fmt.Errorf("%w: cart for user %s", models.ErrNotFound, userID)
	}
	copied := cart
	return &copied, nil
}

// Create adds a new cart for the user.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	if err := cart.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.UserID]; ok {
		return fmt.Errorf("%w: cart already exists for user %s", models.ErrConflict, cart.UserID)
	}
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	r.carts[cart.UserID] = *cart
	return nil
}

// Save persists a mutated cart, failing with ErrConflict when the stored
// version has moved past the one the caller read.
func (r *MockCartRepository) Save(cart *models.Cart) error {
	if err := cart.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.UserID]
	if !ok {
		return fmt.Errorf("%w: cart for user %s", models.ErrNotFound, cart.UserID)
	}
	if stored.Version != cart.Version {
		return fmt.Errorf("%w: cart %s was modified concurrently", models.ErrConflict, cart.ID)
	}
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	r.carts[cart.UserID] = *cart
	return nil
}
