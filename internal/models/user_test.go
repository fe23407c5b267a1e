package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserValidate(t *testing.T) {
	user := User{
		Username:     "testuser",
		Email:        "test@example.com",
		PhoneContact: "+6281234567890",
	}
	assert.NoError(t, user.Validate())
}

func TestUserValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		user User
	}{
		{"username too short", User{Username: "ab", Email: "test@example.com"}},
		{"username bad charset", User{Username: "bad user!", Email: "test@example.com"}},
		{"invalid email", User{Username: "testuser", Email: "not-an-email"}},
		{"invalid phone", User{Username: "testuser", Email: "test@example.com", PhoneContact: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.user.Validate(), ErrValidation)
		})
	}
}

func TestUserSetPasswordAndCheck(t *testing.T) {
	user := User{Username: "testuser", Email: "test@example.com"}

	err := user.SetPassword("Password1")
	assert.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "Password1")

	assert.True(t, user.CheckPassword("Password1"))
	assert.False(t, user.CheckPassword("wrongpass"))
}

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Password1", true},
		{"Aa1aaaaa", true},
		{"", false},
		{"Pass1", false},       // too short
		{"password1", false},   // no upper
		{"PASSWORD1", false},   // no lower
		{"Passwordd", false},   // no digit
	}
	for _, tc := range cases {
		err := ValidatePasswordPolicy(tc.password)
		if tc.ok {
			assert.NoError(t, err, "password %q should pass", tc.password)
		} else {
			assert.ErrorIs(t, err, ErrValidation, "password %q should fail", tc.password)
		}
	}
}

func TestUserLockoutAfterMaxAttempts(t *testing.T) {
	user := User{Username: "testuser", Email: "test@example.com"}
	assert.NoError(t, user.SetPassword("Password1"))

	for i := 0; i < MaxLoginAttempts; i++ {
		assert.False(t, user.Locked())
		assert.False(t, user.CheckPassword("wrongpass"))
	}
	assert.True(t, user.Locked())

	// Even the correct password is rejected while locked.
	assert.False(t, user.CheckPassword("Password1"))
	assert.Equal(t, MaxLoginAttempts, user.LoginAttempts)

	user.ResetLoginAttempts()
	assert.False(t, user.Locked())
	assert.True(t, user.CheckPassword("Password1"))
}

func TestUserSuccessfulLoginResetsCounter(t *testing.T) {
	user := User{Username: "testuser", Email: "test@example.com"}
	assert.NoError(t, user.SetPassword("Password1"))

	assert.False(t, user.CheckPassword("wrongpass"))
	assert.False(t, user.CheckPassword("wrongpass"))
	assert.Equal(t, 2, user.LoginAttempts)

	assert.True(t, user.CheckPassword("Password1"))
	assert.Equal(t, 0, user.LoginAttempts)
	assert.NotNil(t, user.LastLogin)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "test@example.com", NormalizeEmail("  Test@Example.COM "))
}
