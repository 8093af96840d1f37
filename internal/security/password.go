package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost defines the bcrypt work factor. The hash string records the
// cost, so raising it later keeps old hashes verifiable.
const bcryptCost = 12

// MinPasswordLength is the minimum accepted password length for account
// creation, password changes and resets.
const MinPasswordLength = 6

// ErrPasswordTooShort indicates a candidate password fails the length policy.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// ValidatePassword checks a candidate password against the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
