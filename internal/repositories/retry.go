package repositories

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"tweeps/internal/models"

	"gorm.io/gorm"
)

// maxStorageAttempts bounds the retry loop for transient storage failures.
const maxStorageAttempts = 3

// transientHints are driver error fragments worth retrying. Constraint and
// not-found errors are never in this set; business failures are not retried.
var transientHints = []string{
	"database is locked",
	"deadlock",
	"serialization",
	"connection refused",
	"connection reset",
	"bad connection",
	"broken pipe",
	"timeout",
}

func transientStorageError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

func duplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique constraint") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

// withStorageRetry runs op, retrying transient failures up to
// maxStorageAttempts times. Each retried attempt starts from a fresh
// statement, so there is nothing to roll back between tries. Exhausting the
// budget surfaces models.ErrStorage as a fatal error.
func withStorageRetry(op func() error) error {
	var err error
	for attempt := 1; attempt <= maxStorageAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !transientStorageError(err) {
			return err
		}
		log.Printf("transient storage error (attempt %d/%d): %v", attempt, maxStorageAttempts, err)
	}
	return fmt.Errorf("%w: %v (after %d attempts)", models.ErrStorage, err, maxStorageAttempts)
}

// filterFields validates a partial update against the allowed column set.
// Unknown field names signal a client programming error, not a storage error.
func filterFields(fields map[string]interface{}, allowed map[string]bool) error {
	var unknown []string
	for name := range fields {
		if !allowed[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown fields: %s", models.ErrValidation, strings.Join(unknown, ", "))
	}
	return nil
}
