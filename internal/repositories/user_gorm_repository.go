package repositories

import (
	"errors"
	"fmt"

	"tweeps/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create persists a new user. Emails are stored lowercased so the unique
// index is case-insensitive.
func (r *GORMUserRepository) Create(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	user.EnsureID()
	user.Email = models.NormalizeEmail(user.Email)
	err := withStorageRetry(func() error {
		return r.db.Create(user).Error
	})
	if err != nil {
		if duplicateKeyError(err) {
			return fmt.Errorf("%w: username or email already registered", models.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Save persists a modified user (login counters, profile changes).
func (r *GORMUserRepository) Save(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	user.Touch()
	err := withStorageRetry(func() error {
		return r.db.Save(user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user by ID. Soft-deleted users are excluded unless
// includeDeleted is set; they remain addressable by ID with it.
func (r *GORMUserRepository) GetByID(id string, includeDeleted bool) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	var user models.User
	query := r.db
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if err := query.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a non-deleted user by username.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("is_deleted = ?", false).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByEmail retrieves a non-deleted user by email, case-insensitively.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("is_deleted = ?", false).First(&user, "email = ?", models.NormalizeEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with email %s", models.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}
