package repositories

import (
	"errors"
	"testing"

	"tweeps/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWithStorageRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := withStorageRetry(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithStorageRetryExhaustsBudget(t *testing.T) {
	calls := 0
	err := withStorageRetry(func() error {
		calls++
		return errors.New("deadlock detected")
	})
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Equal(t, maxStorageAttempts, calls)
}

func TestWithStorageRetryDoesNotRetryBusinessErrors(t *testing.T) {
	cases := []error{
		gorm.ErrRecordNotFound,
		gorm.ErrDuplicatedKey,
		errors.New("UNIQUE constraint failed: users.email"),
	}
	for _, failure := range cases {
		calls := 0
		err := withStorageRetry(func() error {
			calls++
			return failure
		})
		assert.Equal(t, failure, err)
		assert.Equal(t, 1, calls, "error %v must not be retried", failure)
	}
}

func TestFilterFields(t *testing.T) {
	allowed := map[string]bool{"name": true, "price": true}

	assert.NoError(t, filterFields(map[string]interface{}{"name": "Pizza"}, allowed))

	err := filterFields(map[string]interface{}{"name": "Pizza", "is_deal_of_the_day": true}, allowed)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "is_deal_of_the_day")
}

func TestDuplicateKeyError(t *testing.T) {
	assert.True(t, duplicateKeyError(gorm.ErrDuplicatedKey))
	assert.True(t, duplicateKeyError(errors.New("ERROR: duplicate key value violates unique constraint")))
	assert.False(t, duplicateKeyError(errors.New("connection refused")))
	assert.False(t, duplicateKeyError(nil))
}
