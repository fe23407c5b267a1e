package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MaxLoginAttempts is the consecutive-failure ceiling. Once reached, password
// checks are rejected without consulting the hash until the counter is reset
// by a successful login or an administrative reset.
const MaxLoginAttempts = 5

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// User represents an account in the system.
type User struct {
	Record
	Username      string     `json:"username" gorm:"uniqueIndex;type:varchar(30)" validate:"required,min=3,max=30"`
	Email         string     `json:"email" gorm:"uniqueIndex;type:varchar(60)" validate:"required,email"`
	PhoneContact  string     `json:"phone_contact,omitempty" validate:"omitempty,max=15"`
	PasswordHash  string     `json:"-" gorm:"type:varchar(128)"`
	Address       string     `json:"address,omitempty" validate:"omitempty,max=100"`
	IsAdmin       bool       `json:"is_admin" gorm:"default:false"`
	LoginAttempts int        `json:"-" gorm:"default:0"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
}

// Validate checks username, email, and phone formats.
func (u *User) Validate() error {
	if !ValidUsername(u.Username) {
		return fmt.Errorf("%w: username must be 3-30 alphanumeric, underscore, or hyphen characters", ErrValidation)
	}
	if !ValidEmail(u.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if u.PhoneContact != "" && !phoneRegex.MatchString(u.PhoneContact) {
		return fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	return nil
}

// SetPassword hashes and stores the password. The plaintext is never
// retained. Policy: at least 8 characters with upper, lower, and digit
// classes present.
func (u *User) SetPassword(password string) error {
	if err := ValidatePasswordPolicy(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies the password against the stored hash. Once the
// failed-attempt counter reaches MaxLoginAttempts the hash is not consulted
// at all and the check fails until the counter is reset. A successful check
// resets the counter and stamps the last login; a failure increments it.
// The caller persists the mutated counters.
func (u *User) CheckPassword(password string) bool {
	if u.Locked() {
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		u.LoginAttempts++
		return false
	}
	u.LoginAttempts = 0
	now := time.Now().UTC()
	u.LastLogin = &now
	return true
}

// Locked reports whether the account-level lockout is in effect.
func (u *User) Locked() bool {
	return u.LoginAttempts >= MaxLoginAttempts
}

// ResetLoginAttempts clears the lockout counter (administrative reset).
func (u *User) ResetLoginAttempts() {
	u.LoginAttempts = 0
}

// NormalizeEmail lowercases an email for case-insensitive comparison and
// storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidUsername reports whether the username matches the allowed charset and
// length.
func ValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidEmail reports whether the address has a plausible email shape.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePasswordPolicy enforces the password policy: non-empty, at least
// MinPasswordLength characters, with upper, lower, and digit classes present.
func ValidatePasswordPolicy(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain upper case, lower case, and digit characters", ErrValidation)
	}
	return nil
}
